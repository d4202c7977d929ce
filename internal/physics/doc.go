// Package physics provides the flexible two-mass plant driven by a shaped
// acceleration command.
//
// [TwoMass] implements [dynamo.System] with state (x1, v1, x2, v2): mass 1
// is pushed by the command and drags mass 2 through a spring of stiffness k.
// It also implements [dynamo.Hamiltonian] so residual energy can be
// reported, and exposes its linear state-space form for modal analysis:
//
//	sys, _ := physics.NewTwoMass(physics.DefaultParams(), gen)
//	wn := sys.NaturalFrequency() // rad/s
package physics
