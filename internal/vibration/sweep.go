package vibration

import (
	"context"
	"errors"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

// Distances returns n evenly spaced distances from lo to hi inclusive.
func Distances(lo, hi float64, n int) ([]float64, error) {
	switch {
	case n < 1:
		return nil, dynamo.InvalidParameter("sweep needs at least one sample, got %d", n)
	case !(lo >= 0) || !(hi >= lo):
		return nil, dynamo.InvalidParameter("invalid distance range [%g, %g]", lo, hi)
	case n == 1:
		return []float64{lo}, nil
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

type SweepOptions struct {
	// Workers bounds concurrent integrations; zero means GOMAXPROCS.
	Workers int
	// OnSample is called once per finished sample, from a single goroutine,
	// in completion order.
	OnSample func(Result)
}

type indexed struct {
	i int
	r Result
}

// Sweep evaluates base at every distance. Samples whose integration fails are
// kept with Err set; any other failure aborts the sweep. Results are ordered
// by ascending distance.
func (e *Evaluator) Sweep(ctx context.Context, base command.Move, shaper command.Shaper, distances []float64, opts SweepOptions) ([]Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := shaper.Validate(); err != nil {
		return nil, err
	}
	for _, d := range distances {
		m := base
		m.Distance = d
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	samples := make(chan indexed)
	results := make([]Result, len(distances))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range samples {
			if opts.OnSample != nil {
				opts.OnSample(s.r)
			}
			results[s.i] = s.r
		}
	}()

	for i, d := range distances {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := base
			m.Distance = d

			res, _, err := e.Evaluate(gctx, m, shaper)
			if err != nil && !errors.Is(err, dynamo.ErrIntegrationFailure) {
				return err
			}

			select {
			case samples <- indexed{i: i, r: res}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	close(samples)
	<-done
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})
	return results, nil
}
