package vibration

import (
	"context"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

// Evaluator integrates the two-mass system for one move at a time.
type Evaluator struct {
	Params physics.SystemParams
	Solver dynamo.Solver
	Grid   []float64

	// IncludeShaperDuration starts the tail after the last shaper impulse has
	// played out instead of at the unshaped move end.
	IncludeShaperDuration bool
}

func (e *Evaluator) Validate() error {
	if err := e.Params.Validate(); err != nil {
		return err
	}
	if e.Solver == nil {
		return dynamo.InvalidParameter("no solver configured")
	}
	if len(e.Grid) == 0 {
		return dynamo.InvalidParameter("empty time grid")
	}
	return nil
}

// EndTime is the time the tail measurement starts from for gen. With
// IncludeShaperDuration it is the end of the issued shaped command.
func (e *Evaluator) EndTime(gen *command.Generator) float64 {
	if e.IncludeShaperDuration {
		return gen.ShapedEndTime()
	}
	return gen.EndTime()
}

// Evaluate simulates move from rest and measures its residual vibration.
// Integration failures are returned both as the error and in Result.Err.
func (e *Evaluator) Evaluate(ctx context.Context, move command.Move, shaper command.Shaper) (Result, *dynamo.Trajectory, error) {
	if err := e.Validate(); err != nil {
		return Result{}, nil, err
	}

	gen, err := command.NewGenerator(move, shaper)
	if err != nil {
		return Result{}, nil, err
	}
	sys, err := physics.NewTwoMass(e.Params, gen)
	if err != nil {
		return Result{}, nil, err
	}

	res := Result{Distance: move.Distance, EndTime: e.EndTime(gen)}

	traj, err := e.Solver.Solve(ctx, sys, make(dynamo.State, sys.StateDim()), e.Grid)
	if err != nil {
		res.Err = err
		return res, nil, err
	}

	res.Amplitude, err = ResidualAmplitude(traj, res.EndTime)
	if err != nil {
		return Result{}, nil, err
	}
	return res, traj, nil
}
