// Package dynamo provides core simulation primitives for the two-mass
// command-shaping study.
//
// The package defines the fundamental interfaces and types shared by the
// model, integrator and evaluator packages:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator], [AdaptiveIntegrator]: single-step numerical methods
//   - [Solver]: integrates a [System] over a time grid into a [Trajectory]
//
// # Example
//
//	sys, _ := physics.NewTwoMass(params, gen)
//	solver, _ := integrators.NewSolver("rk45", integrators.DefaultOptions())
//	traj, err := solver.Solve(ctx, sys, dynamo.State{0, 0, 0, 0}, dynamo.UniformGrid(10, 0.01))
//
// # Thread Safety
//
// States and trajectories are plain values. Integrators keep scratch buffers
// and are NOT thread-safe; solvers create a fresh integrator per Solve call.
package dynamo
