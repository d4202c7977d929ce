// Package vibration measures residual vibration of the two-mass system after
// a commanded move and sweeps that measurement over a range of move distances.
package vibration
