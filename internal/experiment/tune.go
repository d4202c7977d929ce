package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/shapesim/internal/analysis"
	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/optim"
	"github.com/san-kum/shapesim/internal/vibration"
)

const (
	ParamFrequency = "frequency"
	ParamDamping   = "damping"

	ObjectiveMax  = "max"
	ObjectiveMean = "mean"
)

type TuneOptions struct {
	Frequencies optim.Range
	Dampings    optim.Range
	// Objective is ObjectiveMax (worst residual over the sweep) or
	// ObjectiveMean.
	Objective string
	Workers   int
	OnTrial   func(optim.Trial)
}

type TuneResult struct {
	Frequency float64
	Damping   float64
	Score     float64
	Search    *optim.Result
	Elapsed   time.Duration
}

func checkObjective(objective string) error {
	switch objective {
	case "", ObjectiveMax, ObjectiveMean:
		return nil
	}
	return dynamo.InvalidParameter("unknown objective %q (want %s or %s)", objective, ObjectiveMax, ObjectiveMean)
}

func score(summary analysis.SweepSummary, objective string) (float64, error) {
	if summary.Unavailable == summary.Count {
		return 0, fmt.Errorf("%w: every sweep sample failed", dynamo.ErrIntegrationFailure)
	}
	if objective == ObjectiveMean {
		return summary.Mean, nil
	}
	return summary.Max, nil
}

// Tune grid-searches shaper frequency and damping for the configured shaper
// type, scoring each point by the residual vibration of the configured sweep.
func Tune(ctx context.Context, cfg *config.Config, opts TuneOptions) (*TuneResult, error) {
	if cfg.Shaper.Type == config.CustomShaper || !cfg.Shaper.Shaped() {
		return nil, dynamo.InvalidParameter("tuning needs a designed shaper type, got %q", cfg.Shaper.Type)
	}
	if err := checkObjective(opts.Objective); err != nil {
		return nil, err
	}
	if len(opts.Dampings.Values) == 0 {
		opts.Dampings = optim.Range{Name: ParamDamping, Values: []float64{cfg.Shaper.Damping}}
	}
	opts.Frequencies.Name = ParamFrequency
	opts.Dampings.Name = ParamDamping

	base, err := New(cfg)
	if err != nil {
		return nil, err
	}
	distances, err := base.Distances()
	if err != nil {
		return nil, err
	}
	eval := base.Evaluator()

	objective := func(ctx context.Context, p map[string]float64) (float64, error) {
		sc := cfg.Shaper
		sc.Frequency = p[ParamFrequency]
		sc.Damping = p[ParamDamping]

		shaper, err := BuildShaper(sc, cfg.System)
		if err != nil {
			return 0, err
		}
		results, err := eval.Sweep(ctx, cfg.Move, shaper, distances, vibration.SweepOptions{Workers: opts.Workers})
		if err != nil {
			return 0, err
		}
		s, err := score(analysis.Summarize(results), opts.Objective)
		if opts.OnTrial != nil {
			opts.OnTrial(optim.Trial{Params: p, Score: s, Err: err})
		}
		return s, err
	}

	start := time.Now()
	search, err := optim.NewGridSearch(opts.Frequencies, opts.Dampings).Search(ctx, objective)
	if err != nil {
		return nil, err
	}
	return &TuneResult{
		Frequency: search.Best[ParamFrequency],
		Damping:   search.Best[ParamDamping],
		Score:     search.Score,
		Search:    search,
		Elapsed:   time.Since(start),
	}, nil
}
