// Package optim searches parameter grids for the point minimizing an objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/shapesim/internal/dynamo"
)

// Objective scores one parameter point; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// Range is the candidate values of one named parameter.
type Range struct {
	Name   string
	Values []float64
}

// Linspace builds a range of n evenly spaced values from lo to hi inclusive.
func Linspace(name string, lo, hi float64, n int) Range {
	if n <= 1 || lo == hi {
		return Range{Name: name, Values: []float64{lo}}
	}
	return Range{Name: name, Values: floats.Span(make([]float64, n), lo, hi)}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type Result struct {
	Best   map[string]float64
	Score  float64
	Trials []Trial
}

type GridSearch struct {
	ranges []Range
}

func NewGridSearch(ranges ...Range) *GridSearch {
	return &GridSearch{ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r.Values)
	}
	return n
}

// Search evaluates every grid point in order. Points whose objective fails
// are recorded and skipped; the search fails only when no point succeeds or
// ctx is done.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	if len(g.ranges) == 0 || g.Size() == 0 {
		return nil, dynamo.InvalidParameter("empty search grid")
	}

	res := &Result{Score: math.Inf(1), Trials: make([]Trial, 0, g.Size())}
	if err := g.searchRecursive(ctx, 0, map[string]float64{}, objective, res); err != nil {
		return nil, err
	}
	if res.Best == nil {
		var errs []error
		for _, t := range res.Trials {
			errs = append(errs, t.Err)
		}
		return nil, fmt.Errorf("no grid point could be evaluated: %w", errors.Join(errs...))
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, objective Objective, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.ranges) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}

		score, err := objective(ctx, params)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return err
		}
		res.Trials = append(res.Trials, Trial{Params: params, Score: score, Err: err})
		if err == nil && score < res.Score {
			res.Score = score
			res.Best = params
		}
		return nil
	}

	r := g.ranges[depth]
	for _, val := range r.Values {
		current[r.Name] = val
		if err := g.searchRecursive(ctx, depth+1, current, objective, res); err != nil {
			return err
		}
	}
	delete(current, r.Name)
	return nil
}

// Ranked returns the successful trials ordered by score.
func (r *Result) Ranked() []Trial {
	out := make([]Trial, 0, len(r.Trials))
	for _, t := range r.Trials {
		if t.Err == nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}
