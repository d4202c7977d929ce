// Package experiment wires a config.Config into the command generator, the
// plant, the solver and the vibration evaluator.
package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/shapesim/internal/analysis"
	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/metrics"
	"github.com/san-kum/shapesim/internal/physics"
	"github.com/san-kum/shapesim/internal/shaping"
	"github.com/san-kum/shapesim/internal/storage"
	"github.com/san-kum/shapesim/internal/vibration"
)

type Experiment struct {
	cfg    *config.Config
	shaper command.Shaper
	solver *integrators.Solver
	grid   []float64
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shaper, err := BuildShaper(cfg.Shaper, cfg.System)
	if err != nil {
		return nil, fmt.Errorf("shaper: %w", err)
	}
	solver, err := integrators.NewSolver(cfg.Solver.Integrator, cfg.Solver.Options)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	return &Experiment{
		cfg:    cfg.Clone(),
		shaper: shaper,
		solver: solver,
		grid:   dynamo.UniformGrid(cfg.Grid.Duration, cfg.Grid.Dt),
	}, nil
}

// BuildShaper turns a shaper section into impulses. A zero frequency tunes
// the shaper to the flexible mode of p.
func BuildShaper(sc config.ShaperConfig, p physics.SystemParams) (command.Shaper, error) {
	if sc.Type == config.CustomShaper {
		s := command.Shaper(sc.Impulses).Clone()
		return s, s.Validate()
	}

	t, err := shaping.ParseType(sc.Type)
	if err != nil {
		return nil, err
	}
	freq := sc.Frequency
	if freq == 0 {
		freq = p.NaturalFrequency() / (2 * math.Pi)
	}
	return shaping.Design(t, freq, sc.Damping)
}

func (e *Experiment) Config() *config.Config       { return e.cfg.Clone() }
func (e *Experiment) Shaper() command.Shaper       { return e.shaper.Clone() }
func (e *Experiment) Solver() *integrators.Solver  { return e.solver }
func (e *Experiment) Grid() []float64              { return e.grid }
func (e *Experiment) Params() physics.SystemParams { return e.cfg.System }

func (e *Experiment) Evaluator() *vibration.Evaluator {
	return &vibration.Evaluator{
		Params:                e.cfg.System,
		Solver:                e.solver,
		Grid:                  e.grid,
		IncludeShaperDuration: e.cfg.Sweep.IncludeShaperDuration,
	}
}

// Generator builds the command for the configured move.
func (e *Experiment) Generator() (*command.Generator, error) {
	return command.NewGenerator(e.cfg.Move, e.shaper)
}

type SimulationResult struct {
	Generator  *command.Generator
	Trajectory *dynamo.Trajectory
	Accel      []float64
	Vibration  vibration.Result
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// Simulate integrates the configured move once and reports its metrics,
// including the residual amplitude and residual frequency in Hz.
func (e *Experiment) Simulate(ctx context.Context) (*SimulationResult, error) {
	gen, err := e.Generator()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, traj, err := e.Evaluator().Evaluate(ctx, e.cfg.Move, e.shaper)
	if err != nil {
		return nil, err
	}

	sys, err := physics.NewTwoMass(e.cfg.System, gen)
	if err != nil {
		return nil, err
	}
	values := metrics.Evaluate(traj, gen, metrics.Defaults(sys)...)
	values["residual_amplitude"] = res.Amplitude
	values["end_time"] = res.EndTime
	if f, err := analysis.ResidualFrequency(traj, res.EndTime); err == nil {
		values["residual_freq_hz"] = f
	}

	return &SimulationResult{
		Generator:  gen,
		Trajectory: traj,
		Accel:      gen.Sample(traj.Times),
		Vibration:  res,
		Metrics:    values,
		Elapsed:    time.Since(start),
	}, nil
}

// Distances is the configured sweep span.
func (e *Experiment) Distances() ([]float64, error) {
	sw := e.cfg.Sweep
	return vibration.Distances(sw.MinDistance, sw.MaxDistance, sw.Samples)
}

type SweepResult struct {
	Results []vibration.Result
	Summary analysis.SweepSummary
	Elapsed time.Duration
}

// Sweep runs the configured distance sweep. opts.Workers falls back to the
// configured worker count.
func (e *Experiment) Sweep(ctx context.Context, opts vibration.SweepOptions) (*SweepResult, error) {
	distances, err := e.Distances()
	if err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = e.cfg.Sweep.Workers
	}

	start := time.Now()
	results, err := e.Evaluator().Sweep(ctx, e.cfg.Move, e.shaper, distances, opts)
	if err != nil {
		return nil, err
	}
	return &SweepResult{
		Results: results,
		Summary: analysis.Summarize(results),
		Elapsed: time.Since(start),
	}, nil
}

// Metadata describes this experiment for a stored run.
func (e *Experiment) Metadata(elapsed time.Duration, values map[string]float64) storage.RunMetadata {
	return storage.RunMetadata{
		Integrator: e.cfg.Solver.Integrator,
		Shaper:     e.ShaperName(),
		Elapsed:    elapsed.Seconds(),
		Config:     e.Config(),
		Metrics:    values,
	}
}

func (e *Experiment) ShaperName() string {
	if e.cfg.Shaper.Type == "" {
		return string(shaping.None)
	}
	return e.cfg.Shaper.Type
}
