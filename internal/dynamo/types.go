package dynamo

import (
	"context"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Add returns s+other. Missing entries of other count as zero.
func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is a continuous-time vector field dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t, dt float64) State
}

// AdaptiveIntegrator advances one trial step and reports whether it met the
// tolerances. dtNext is the suggested size for the next attempt.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerances) (xNew State, dtNext float64, accepted bool)
}

// Solver integrates a system from x0 and samples it on every grid time.
type Solver interface {
	Solve(ctx context.Context, dyn System, x0 State, grid []float64) (*Trajectory, error)
}

type Tolerances struct {
	Abs float64 `yaml:"abs_tol" json:"abs_tol"`
	Rel float64 `yaml:"rel_tol" json:"rel_tol"`
}

func DefaultTolerances() Tolerances {
	return Tolerances{Abs: 1e-8, Rel: 1e-6}
}

// Trajectory holds one state per grid time.
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Component extracts state index i across all samples.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}
