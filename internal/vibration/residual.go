package vibration

import (
	"fmt"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

// Result is the residual vibration measured for one move distance. A result
// whose integration failed keeps its distance and carries Err instead of an
// amplitude.
type Result struct {
	Distance  float64 `json:"distance"`
	Amplitude float64 `json:"amplitude"`
	EndTime   float64 `json:"end_time"`
	Err       error   `json:"-"`
}

func (r Result) Available() bool { return r.Err == nil }

func (r Result) Status() string {
	if r.Err != nil {
		return "unavailable"
	}
	return "ok"
}

// TailIndex is the first sample of the post-move tail: the grid index
// nearest to endTime.
func TailIndex(grid []float64, endTime float64) int {
	return dynamo.NearestIndex(grid, endTime)
}

// ResidualAmplitude is the peak-to-peak excursion of x2 over the samples at
// or after the tail index.
func ResidualAmplitude(traj *dynamo.Trajectory, endTime float64) (float64, error) {
	if traj == nil || traj.Len() == 0 {
		return 0, dynamo.InvalidParameter("empty trajectory")
	}

	start := TailIndex(traj.Times, endTime)
	lo, hi := 0.0, 0.0
	for i, s := range traj.States[start:] {
		if len(s) <= physics.X2 {
			return 0, fmt.Errorf("%w: sample %d has %d states", dynamo.ErrDimensionMismatch, start+i, len(s))
		}
		x2 := s[physics.X2]
		if i == 0 || x2 < lo {
			lo = x2
		}
		if i == 0 || x2 > hi {
			hi = x2
		}
	}
	return hi - lo, nil
}
