package experiment

import (
	"context"
	"time"

	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/physics"
)

// Comparison is the outcome of simulating the configured move with one
// integrator.
type Comparison struct {
	Integrator string
	Amplitude  float64
	FinalX2    float64
	Elapsed    time.Duration
	Err        error
}

// CompareIntegrators simulates the configured move once per named integrator
// using the configured solver options.
func (e *Experiment) CompareIntegrators(ctx context.Context, names []string) []Comparison {
	out := make([]Comparison, 0, len(names))
	for _, name := range names {
		c := Comparison{Integrator: name}

		solver, err := integrators.NewSolver(name, e.cfg.Solver.Options)
		if err != nil {
			c.Err = err
			out = append(out, c)
			continue
		}

		eval := e.Evaluator()
		eval.Solver = solver

		start := time.Now()
		res, traj, err := eval.Evaluate(ctx, e.cfg.Move, e.shaper)
		c.Elapsed = time.Since(start)
		if err != nil {
			c.Err = err
		} else {
			c.Amplitude = res.Amplitude
			c.FinalX2 = traj.States[traj.Len()-1][physics.X2]
		}
		out = append(out, c)
	}
	return out
}
