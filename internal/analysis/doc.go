// Package analysis post-processes simulated trajectories and sweep results.
//
//   - [Spectrum] and [DominantFrequency]: power spectrum of a sampled signal
//   - [ResidualFrequency]: frequency of the residual vibration of mass 2
//   - [Summarize]: statistics of a residual vibration sweep
//   - [NewPhasePortrait]: phase plane of two state components, with an ASCII view
//
// # Residual Vibration
//
// The dominant frequency of the post-move tail should match the flexible-mode
// frequency of the plant; shapers are tuned to it:
//
//	f, err := analysis.ResidualFrequency(traj, endTime)
package analysis
