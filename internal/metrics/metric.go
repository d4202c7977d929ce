// Package metrics reduces a simulated trajectory to scalar figures of merit.
package metrics

import (
	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

// Metric observes a trajectory one sample at a time. u is the commanded
// acceleration at t.
type Metric interface {
	Name() string
	Observe(x dynamo.State, u, t float64)
	Value() float64
	Reset()
}

// Evaluate resets every metric, feeds it the whole trajectory and returns
// the values keyed by metric name.
func Evaluate(traj *dynamo.Trajectory, gen *command.Generator, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, x := range traj.States {
		t := traj.Times[i]
		u := 0.0
		if gen != nil {
			u = gen.Accel(t)
		}
		for _, m := range ms {
			m.Observe(x, u, t)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults is the metric set reported for a single simulation.
func Defaults(sys dynamo.Hamiltonian) []Metric {
	return []Metric{
		NewControlEffort(),
		NewPeakDeflection(),
		NewResidualEnergy(sys),
		NewSettlingTime(DefaultSettlingBand),
	}
}
