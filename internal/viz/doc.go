// Package viz renders simulation output in the terminal: lipgloss styles for
// headers and metric tables, and asciigraph line charts for the command
// profile, the two-mass response and residual vibration sweeps.
package viz
