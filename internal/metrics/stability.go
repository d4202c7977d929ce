package metrics

import (
	"math"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

const DefaultSettlingBand = 1e-3

// SettlingTime is the last time the spring deflection was outside
// ±threshold. Zero if it never left the band.
type SettlingTime struct {
	name      string
	threshold float64
	last      float64
}

func NewSettlingTime(threshold float64) *SettlingTime {
	return &SettlingTime{
		name:      "settling_time",
		threshold: threshold,
	}
}

func (s *SettlingTime) Name() string {
	return s.name
}

func (s *SettlingTime) Observe(x dynamo.State, u, t float64) {
	if len(x) <= physics.X2 {
		return
	}
	if math.Abs(x[physics.X2]-x[physics.X1]) > s.threshold {
		s.last = t
	}
}

func (s *SettlingTime) Value() float64 {
	return s.last
}

func (s *SettlingTime) Reset() {
	s.last = 0
}
