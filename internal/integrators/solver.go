package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/shapesim/internal/dynamo"
)

const ctxCheckInterval = 1024

// Options control how a Solver advances between grid points.
type Options struct {
	Tol         dynamo.Tolerances `yaml:",inline" json:"tol"`
	InitialStep float64           `yaml:"initial_step" json:"initial_step"`
	MinStep     float64           `yaml:"min_step" json:"min_step"`
	MaxStep     float64           `yaml:"max_step" json:"max_step"`
	MaxSteps    int               `yaml:"max_steps" json:"max_steps"`
}

func DefaultOptions() Options {
	return Options{
		Tol:         dynamo.DefaultTolerances(),
		InitialStep: 1e-3,
		MinStep:     1e-12,
		MaxStep:     0.01,
		MaxSteps:    1_000_000,
	}
}

func (o Options) Validate() error {
	if !(o.Tol.Abs > 0) || !(o.Tol.Rel >= 0) {
		return dynamo.InvalidParameter("tolerances must be positive, got abs=%g rel=%g", o.Tol.Abs, o.Tol.Rel)
	}
	if !(o.MaxStep > 0) || !(o.InitialStep > 0) || !(o.MinStep > 0) {
		return dynamo.InvalidParameter("step sizes must be positive")
	}
	if o.MinStep > o.MaxStep {
		return dynamo.InvalidParameter("min_step %g exceeds max_step %g", o.MinStep, o.MaxStep)
	}
	if o.MaxSteps <= 0 {
		return dynamo.InvalidParameter("max_steps must be positive, got %d", o.MaxSteps)
	}
	return nil
}

// Solver integrates a system over a time grid with a named method.
// Adaptive methods honor the tolerances; fixed-step methods take MaxStep
// sub-steps between grid points. Each Solve call builds its own integrator,
// so one Solver may be shared by concurrent callers.
type Solver struct {
	name string
	opts Options
}

func NewSolver(name string, opts Options) (*Solver, error) {
	if _, ok := constructors[name]; !ok {
		return nil, dynamo.InvalidParameter("unknown integrator %q (available: %v)", name, Names())
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Solver{name: name, opts: opts}, nil
}

func (s *Solver) Name() string     { return s.name }
func (s *Solver) Options() Options { return s.opts }

func (s *Solver) Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, grid []float64) (*dynamo.Trajectory, error) {
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system expects %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if len(grid) == 0 {
		return nil, dynamo.InvalidParameter("empty time grid")
	}
	for i := 1; i < len(grid); i++ {
		if !(grid[i] > grid[i-1]) {
			return nil, dynamo.InvalidParameter("time grid must be strictly increasing at index %d", i)
		}
	}

	integ, err := New(s.name)
	if err != nil {
		return nil, err
	}
	run := &run{ctx: ctx, dyn: dyn, opts: s.opts, integ: integ}
	if a, ok := integ.(dynamo.AdaptiveIntegrator); ok {
		run.adaptive = a
	}
	return run.solve(x0, grid)
}

type run struct {
	ctx      context.Context
	dyn      dynamo.System
	opts     Options
	integ    dynamo.Integrator
	adaptive dynamo.AdaptiveIntegrator

	steps int
	dt    float64
}

func (r *run) solve(x0 dynamo.State, grid []float64) (*dynamo.Trajectory, error) {
	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, len(grid)),
		States: make([]dynamo.State, 0, len(grid)),
	}

	x := x0.Clone()
	t := grid[0]
	r.dt = math.Min(r.opts.InitialStep, r.opts.MaxStep)

	traj.Times = append(traj.Times, t)
	traj.States = append(traj.States, x.Clone())

	for k := 1; k < len(grid); k++ {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		x, err = r.advance(x, t, grid[k])
		if err != nil {
			return nil, err
		}
		t = grid[k]

		traj.Times = append(traj.Times, t)
		traj.States = append(traj.States, x.Clone())
	}

	return traj, nil
}

// advance integrates from t to exactly target.
func (r *run) advance(x dynamo.State, t, target float64) (dynamo.State, error) {
	for t < target {
		r.steps++
		if r.steps > r.opts.MaxSteps {
			return nil, r.fail(t, x, dynamo.ErrTooManySteps)
		}
		if r.steps%ctxCheckInterval == 0 {
			if err := r.ctx.Err(); err != nil {
				return nil, err
			}
		}

		h := r.opts.MaxStep
		if r.adaptive != nil {
			h = math.Min(r.dt, h)
		}
		last := false
		if remaining := target - t; h >= remaining {
			h = remaining
			last = true
		}

		var xNew dynamo.State
		if r.adaptive != nil {
			var dtNext float64
			var accepted bool
			xNew, dtNext, accepted = r.adaptive.StepAdaptive(r.dyn, x, t, h, r.opts.Tol)
			if !accepted {
				if h <= r.opts.MinStep {
					return nil, r.fail(t, x, dynamo.ErrStepTooSmall)
				}
				r.dt = math.Max(dtNext, r.opts.MinStep)
				continue
			}
			if last {
				r.dt = math.Max(r.dt, dtNext)
			} else {
				r.dt = dtNext
			}
		} else {
			xNew = r.integ.Step(r.dyn, x, t, h)
		}

		if !xNew.IsValid() {
			return nil, r.fail(t, x, dynamo.ErrInvalidState)
		}

		x = xNew
		if last {
			t = target
		} else {
			t += h
		}
	}
	return x, nil
}

func (r *run) fail(t float64, x dynamo.State, cause error) error {
	return &dynamo.SimulationError{Step: r.steps, Time: t, State: x.Clone(), Wrapped: cause}
}
