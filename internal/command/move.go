package command

import (
	"fmt"
	"math"

	"github.com/san-kum/shapesim/internal/dynamo"
)

// MaxShaperImpulses is the longest shaper the generator accepts.
const MaxShaperImpulses = 9

// MotionLimits are the symmetric actuation limits of a move.
type MotionLimits struct {
	MaxAccel float64 `yaml:"max_accel" json:"max_accel"`
	MaxVel   float64 `yaml:"max_vel" json:"max_vel"`
}

func (l MotionLimits) Validate() error {
	if !(l.MaxAccel > 0) || math.IsInf(l.MaxAccel, 1) {
		return dynamo.InvalidParameter("max_accel must be positive, got %g", l.MaxAccel)
	}
	if !(l.MaxVel > 0) || math.IsInf(l.MaxVel, 1) {
		return dynamo.InvalidParameter("max_vel must be positive, got %g", l.MaxVel)
	}
	return nil
}

// Move is one commanded point-to-point move.
type Move struct {
	Distance  float64      `yaml:"distance" json:"distance"`
	StartTime float64      `yaml:"start_time" json:"start_time"`
	Limits    MotionLimits `yaml:",inline" json:"limits"`
}

func (m Move) Validate() error {
	if err := m.Limits.Validate(); err != nil {
		return err
	}
	if !(m.Distance >= 0) || math.IsInf(m.Distance, 1) {
		return dynamo.InvalidParameter("distance must be non-negative, got %g", m.Distance)
	}
	if math.IsNaN(m.StartTime) || math.IsInf(m.StartTime, 0) {
		return dynamo.InvalidParameter("start_time must be finite, got %g", m.StartTime)
	}
	return nil
}

// ShaperImpulse is one impulse of an input shaper. Time is the offset from
// the start of the move.
type ShaperImpulse struct {
	Time      float64 `yaml:"time" json:"time"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

// Shaper is an ordered impulse sequence. An empty shaper means unshaped.
type Shaper []ShaperImpulse

func (s Shaper) Validate() error {
	if len(s) > MaxShaperImpulses {
		return fmt.Errorf("%w: %d impulses (max %d)", dynamo.ErrUnsupportedShaperLength, len(s), MaxShaperImpulses)
	}
	for i, imp := range s {
		if !(imp.Time >= 0) || math.IsInf(imp.Time, 1) {
			return dynamo.InvalidParameter("impulse %d: time must be non-negative, got %g", i, imp.Time)
		}
		if math.IsNaN(imp.Amplitude) || math.IsInf(imp.Amplitude, 0) {
			return dynamo.InvalidParameter("impulse %d: amplitude must be finite, got %g", i, imp.Amplitude)
		}
	}
	return nil
}

// Duration returns the largest impulse time, 0 for an empty shaper.
func (s Shaper) Duration() float64 {
	d := 0.0
	for _, imp := range s {
		d = math.Max(d, imp.Time)
	}
	return d
}

// Sum returns the sum of the impulse amplitudes.
func (s Shaper) Sum() float64 {
	sum := 0.0
	for _, imp := range s {
		sum += imp.Amplitude
	}
	return sum
}

func (s Shaper) Clone() Shaper {
	if s == nil {
		return nil
	}
	c := make(Shaper, len(s))
	copy(c, s)
	return c
}
