package command

import (
	"math"
)

// Kind names the shape of a planned profile.
type Kind int

const (
	BangCoastBang Kind = iota
	BangBang
)

func (k Kind) String() string {
	switch k {
	case BangCoastBang:
		return "bang-coast-bang"
	case BangBang:
		return "bang-bang"
	default:
		return "unknown"
	}
}

// SwitchPoint adds Coeff*MaxAccel to the command strictly after Time.
type SwitchPoint struct {
	Time  float64 `json:"time"`
	Coeff float64 `json:"coeff"`
}

// Profile is a planned unshaped acceleration command.
type Profile struct {
	Kind     Kind          `json:"kind"`
	MaxAccel float64       `json:"max_accel"`
	Switches []SwitchPoint `json:"switches"`
}

// EndTime is the last switch time, when the command returns to zero.
func (p Profile) EndTime() float64 {
	if len(p.Switches) == 0 {
		return 0
	}
	return p.Switches[len(p.Switches)-1].Time
}

// At evaluates the profile at time t.
func (p Profile) At(t float64) float64 {
	return p.shiftedAt(t, 0)
}

func (p Profile) shiftedAt(t, shift float64) float64 {
	accel := 0.0
	for _, sw := range p.Switches {
		accel += sw.Coeff * p.MaxAccel * unitStep(t, sw.Time+shift)
	}
	return accel
}

// unitStep is 1 strictly after the switch time and 0 at or before it.
func unitStep(t, switchTime float64) float64 {
	if t > switchTime {
		return 1
	}
	return 0
}

// coastSwitches returns t1..t4 of the bang-coast-bang form.
func coastSwitches(m Move) (t1, t2, t3, t4 float64) {
	t1 = m.StartTime
	t2 = m.Limits.MaxVel/m.Limits.MaxAccel + t1
	t3 = m.Distance/m.Limits.MaxVel + t1
	t4 = (t2 + t3) - t1
	return t1, t2, t3, t4
}

func coastProfile(m Move) Profile {
	t1, t2, t3, t4 := coastSwitches(m)
	return Profile{
		Kind:     BangCoastBang,
		MaxAccel: m.Limits.MaxAccel,
		Switches: []SwitchPoint{
			{Time: t1, Coeff: 1},
			{Time: t2, Coeff: -1},
			{Time: t3, Coeff: -1},
			{Time: t4, Coeff: 1},
		},
	}
}

// Plan returns the unshaped profile for m. When the coast phase would have
// non-positive duration (t3 <= t2) the move collapses to bang-bang.
func Plan(m Move) (Profile, error) {
	if err := m.Validate(); err != nil {
		return Profile{}, err
	}
	return plan(m), nil
}

func plan(m Move) Profile {
	t1, t2, t3, _ := coastSwitches(m)
	if t3 > t2 {
		return coastProfile(m)
	}

	half := math.Sqrt(m.Distance / m.Limits.MaxAccel)
	t2 = half + t1
	t3 = 2*half + t1
	return Profile{
		Kind:     BangBang,
		MaxAccel: m.Limits.MaxAccel,
		Switches: []SwitchPoint{
			{Time: t1, Coeff: 1},
			{Time: t2, Coeff: -2},
			{Time: t3, Coeff: 1},
		},
	}
}

// Generator evaluates the commanded acceleration of one validated move.
// It is immutable and safe for concurrent use.
type Generator struct {
	move   Move
	shaper Shaper
	plan   Profile
	coast  Profile
}

func NewGenerator(m Move, s Shaper) (*Generator, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		move:   m,
		shaper: s.Clone(),
		plan:   plan(m),
		coast:  coastProfile(m),
	}, nil
}

func (g *Generator) Move() Move       { return g.move }
func (g *Generator) Shaper() Shaper   { return g.shaper.Clone() }
func (g *Generator) Shaped() bool     { return len(g.shaper) > 0 }
func (g *Generator) Profile() Profile { return g.plan }

// IssuedProfile is the profile the command is built from: the unshaped
// plan, or the bang-coast-bang form every shaper impulse replays.
func (g *Generator) IssuedProfile() Profile {
	if g.Shaped() {
		return g.coast
	}
	return g.plan
}

// EndTime is the end of the unshaped plan.
func (g *Generator) EndTime() float64 { return g.plan.EndTime() }

// ShapedEndTime adds the shaper duration to the end of the command that is
// actually issued.
func (g *Generator) ShapedEndTime() float64 {
	if !g.Shaped() {
		return g.plan.EndTime()
	}
	return g.coast.EndTime() + g.shaper.Duration()
}

// Accel returns the commanded acceleration at time t.
func (g *Generator) Accel(t float64) float64 {
	if len(g.shaper) == 0 {
		return g.plan.At(t)
	}
	accel := 0.0
	for _, imp := range g.shaper {
		accel += imp.Amplitude * g.coast.shiftedAt(t, imp.Time)
	}
	return accel
}

// Sample evaluates the command on every time of grid.
func (g *Generator) Sample(grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = g.Accel(t)
	}
	return out
}

// CommandedAcceleration validates its inputs and evaluates a single query.
// Hot loops should build a Generator once instead.
func CommandedAcceleration(limits MotionLimits, distance, startTime, queryTime float64, shaper Shaper) (float64, error) {
	g, err := NewGenerator(Move{Distance: distance, StartTime: startTime, Limits: limits}, shaper)
	if err != nil {
		return 0, err
	}
	return g.Accel(queryTime), nil
}
