package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/shapesim/internal/dynamo"
)

type nanDynamics struct{}

func (n *nanDynamics) StateDim() int { return 1 }
func (n *nanDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.NaN()}
}

type stepForcing struct{ at float64 }

func (s *stepForcing) StateDim() int { return 2 }
func (s *stepForcing) Derive(x dynamo.State, t float64) dynamo.State {
	u := 0.0
	if t > s.at {
		u = 1
	}
	return dynamo.State{x[1], u}
}

func TestSolverHarmonic(t *testing.T) {
	opts := DefaultOptions()
	opts.Tol = dynamo.Tolerances{Abs: 1e-11, Rel: 1e-9}

	for _, name := range []string{"rk4", "rk45"} {
		t.Run(name, func(t *testing.T) {
			solver, err := NewSolver(name, opts)
			if err != nil {
				t.Fatal(err)
			}

			grid := dynamo.UniformGrid(10, 0.1)
			traj, err := solver.Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, grid)
			if err != nil {
				t.Fatalf("solve failed: %v", err)
			}

			if traj.Len() != len(grid) {
				t.Fatalf("expected %d samples, got %d", len(grid), traj.Len())
			}
			for i, tm := range traj.Times {
				if tm != grid[i] {
					t.Fatalf("sample %d at t=%v, grid has %v", i, tm, grid[i])
				}
				if math.Abs(traj.States[i][0]-math.Cos(tm)) > 1e-6 {
					t.Errorf("t=%.2f: expected %.8f, got %.8f", tm, math.Cos(tm), traj.States[i][0])
				}
			}
		})
	}
}

func TestSolverDiscontinuousForcing(t *testing.T) {
	solver, err := NewSolver("rk45", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	grid := dynamo.UniformGrid(2, 0.01)
	traj, err := solver.Solve(context.Background(), &stepForcing{at: 0.505}, dynamo.State{0, 0}, grid)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	final := traj.States[len(traj.States)-1]
	tau := 2 - 0.505
	if math.Abs(final[1]-tau) > 1e-5 {
		t.Errorf("expected velocity %.6f, got %.6f", tau, final[1])
	}
	if math.Abs(final[0]-0.5*tau*tau) > 1e-5 {
		t.Errorf("expected position %.6f, got %.6f", 0.5*tau*tau, final[0])
	}
}

func TestSolverIntegrationFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSteps = 10000

	for _, name := range []string{"rk4", "rk45"} {
		t.Run(name, func(t *testing.T) {
			solver, err := NewSolver(name, opts)
			if err != nil {
				t.Fatal(err)
			}

			_, err = solver.Solve(context.Background(), &nanDynamics{}, dynamo.State{1}, []float64{0, 1})
			if !errors.Is(err, dynamo.ErrIntegrationFailure) {
				t.Fatalf("expected ErrIntegrationFailure, got %v", err)
			}

			var simErr *dynamo.SimulationError
			if !errors.As(err, &simErr) {
				t.Fatalf("expected *SimulationError, got %T", err)
			}
		})
	}
}

func TestSolverInvalidInput(t *testing.T) {
	solver, err := NewSolver("rk45", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := solver.Solve(ctx, &harmonicOscillator{}, dynamo.State{1}, []float64{0, 1}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := solver.Solve(ctx, &harmonicOscillator{}, dynamo.State{1, 0}, nil); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for empty grid, got %v", err)
	}
	if _, err := solver.Solve(ctx, &harmonicOscillator{}, dynamo.State{1, 0}, []float64{0, 1, 1}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for repeated grid time, got %v", err)
	}
}

func TestSolverCanceled(t *testing.T) {
	solver, err := NewSolver("rk45", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = solver.Solve(ctx, &harmonicOscillator{}, dynamo.State{1, 0}, dynamo.UniformGrid(1, 0.1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewSolverValidation(t *testing.T) {
	if _, err := NewSolver("nope", DefaultOptions()); err == nil {
		t.Error("expected error for unknown integrator")
	}

	opts := DefaultOptions()
	opts.Tol.Abs = 0
	if _, err := NewSolver("rk45", opts); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	opts = DefaultOptions()
	opts.MinStep = 1
	if _, err := NewSolver("rk45", opts); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
