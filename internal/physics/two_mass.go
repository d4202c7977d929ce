package physics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
)

// State indices of the two-mass system.
const (
	X1 = iota
	V1
	X2
	V2
)

// SystemParams is the physical model: two masses joined by one spring.
type SystemParams struct {
	M1 float64 `yaml:"m1" json:"m1"`
	M2 float64 `yaml:"m2" json:"m2"`
	K  float64 `yaml:"k" json:"k"`
}

func DefaultParams() SystemParams {
	return SystemParams{M1: DefaultMass, M2: DefaultMass, K: DefaultStiffness}
}

func (p SystemParams) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"m1", p.M1}, {"m2", p.M2}, {"k", p.K}} {
		if !(f.v > 0) || math.IsInf(f.v, 1) {
			return dynamo.InvalidParameter("%s must be positive, got %g", f.name, f.v)
		}
	}
	return nil
}

// NaturalFrequency returns the flexible-mode frequency sqrt(k(m1+m2)/(m1 m2)) in rad/s.
func (p SystemParams) NaturalFrequency() float64 {
	return math.Sqrt(p.K * (p.M1 + p.M2) / (p.M1 * p.M2))
}

type TwoMass struct {
	Params  SystemParams
	Command *command.Generator
}

// NewTwoMass builds the plant. A nil generator leaves the system unforced.
func NewTwoMass(p SystemParams, gen *command.Generator) (*TwoMass, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &TwoMass{Params: p, Command: gen}, nil
}

func (tm *TwoMass) StateDim() int { return 4 }

// Input returns the commanded acceleration at t.
func (tm *TwoMass) Input(t float64) float64 {
	if tm.Command == nil {
		return 0
	}
	return tm.Command.Accel(t)
}

func (tm *TwoMass) Derive(x dynamo.State, t float64) dynamo.State {
	p := tm.Params
	spring := p.K * (x[X2] - x[X1])

	return dynamo.State{
		x[V1],
		(spring + tm.Input(t)) / p.M1,
		x[V2],
		(-spring) / p.M2,
	}
}

// Energy is the kinetic energy of both masses plus the spring energy.
func (tm *TwoMass) Energy(x dynamo.State) float64 {
	p := tm.Params
	stretch := x[X2] - x[X1]
	return 0.5*p.M1*x[V1]*x[V1] + 0.5*p.M2*x[V2]*x[V2] + 0.5*p.K*stretch*stretch
}

// StateSpace returns the linear model dx/dt = A x + B u.
func (tm *TwoMass) StateSpace() (a, b *mat.Dense) {
	p := tm.Params
	a = mat.NewDense(4, 4, []float64{
		0, 1, 0, 0,
		-p.K / p.M1, 0, p.K / p.M1, 0,
		0, 0, 0, 1,
		p.K / p.M2, 0, -p.K / p.M2, 0,
	})
	b = mat.NewDense(4, 1, []float64{0, 1 / p.M1, 0, 0})
	return a, b
}

// NaturalFrequency returns the flexible-mode frequency in rad/s, taken from
// the eigenvalues of A. It falls back to the closed form if the
// decomposition fails.
func (tm *TwoMass) NaturalFrequency() float64 {
	a, _ := tm.StateSpace()

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return tm.Params.NaturalFrequency()
	}

	wn := 0.0
	for _, v := range eig.Values(nil) {
		wn = math.Max(wn, math.Abs(imag(v)))
	}
	return wn
}

// NaturalFrequencyHz is NaturalFrequency in Hz, the unit shaper design uses.
func (tm *TwoMass) NaturalFrequencyHz() float64 {
	return tm.NaturalFrequency() / (2 * math.Pi)
}
