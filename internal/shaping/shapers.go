// Package shaping designs input shapers for a vibration mode of known
// frequency and damping. Every designer returns a command.Shaper whose first
// impulse sits at t=0 and whose amplitudes sum to one.
package shaping

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

const (
	// VibrationReduction is the residual vibration ratio the EI family targets.
	VibrationReduction = 20.0
	DefaultDamping     = 0.1
)

type Type string

const (
	None      Type = "none"
	ZV        Type = "zv"
	MZV       Type = "mzv"
	ZVD       Type = "zvd"
	EI        Type = "ei"
	TwoHump   Type = "2hump_ei"
	ThreeHump Type = "3hump_ei"
)

// Definition describes one shaper family.
type Definition struct {
	Type       Type
	MaxDamping float64
	Summary    string
	design     func(freq, zeta float64) (amps, times []float64)
}

var definitions = []Definition{
	{Type: ZV, MaxDamping: 0.99, Summary: "zero vibration, two impulses over half a period", design: zvCoeffs},
	{Type: MZV, MaxDamping: 0.99, Summary: "modified ZV, three impulses over 3/4 of a period", design: mzvCoeffs},
	{Type: ZVD, MaxDamping: 0.99, Summary: "zero vibration and derivative, three impulses over one period", design: zvdCoeffs},
	{Type: EI, MaxDamping: 0.4, Summary: "extra insensitive, three impulses over one period", design: eiCoeffs},
	{Type: TwoHump, MaxDamping: 0.3, Summary: "two-hump extra insensitive, four impulses over 1.5 periods", design: twoHumpCoeffs},
	{Type: ThreeHump, MaxDamping: 0.2, Summary: "three-hump extra insensitive, five impulses over two periods", design: threeHumpCoeffs},
}

// Definitions lists every designable shaper family, excluding None.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Types returns the accepted type names, None first.
func Types() []Type {
	types := []Type{None}
	for _, d := range definitions {
		types = append(types, d.Type)
	}
	return types
}

func lookup(t Type) (Definition, bool) {
	for _, d := range definitions {
		if d.Type == t {
			return d, true
		}
	}
	return Definition{}, false
}

// ParseType accepts a case-insensitive type name.
func ParseType(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	if t == "" || t == None {
		return None, nil
	}
	if _, ok := lookup(t); !ok {
		return "", dynamo.InvalidParameter("unknown shaper type %q (available: %v)", name, Types())
	}
	return t, nil
}

// Design builds a normalized shaper of type t tuned to freq (Hz) with
// damping ratio zeta. None yields an empty shaper.
func Design(t Type, freq, zeta float64) (command.Shaper, error) {
	if t == None || t == "" {
		return command.Shaper{}, nil
	}
	def, ok := lookup(t)
	if !ok {
		return nil, dynamo.InvalidParameter("unknown shaper type %q (available: %v)", t, Types())
	}
	if !(freq > 0) || math.IsInf(freq, 0) {
		return nil, dynamo.InvalidParameter("shaper frequency must be positive, got %g", freq)
	}
	if !(zeta >= 0) || zeta >= def.MaxDamping {
		return nil, dynamo.InvalidParameter("%s damping ratio must be in [0, %g), got %g", t, def.MaxDamping, zeta)
	}

	amps, times := def.design(freq, zeta)
	return normalize(amps, times)
}

// Duration is the time of the last impulse.
func Duration(s command.Shaper) float64 {
	return s.Duration()
}

func normalize(amps, times []float64) (command.Shaper, error) {
	sum := 0.0
	for _, a := range amps {
		sum += a
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: degenerate shaper amplitudes %v", dynamo.ErrInvalidParameter, amps)
	}

	s := make(command.Shaper, len(amps))
	for i := range amps {
		s[i] = command.ShaperImpulse{Time: times[i], Amplitude: amps[i] / sum}
	}
	return s, nil
}

func dampedPeriod(freq, zeta float64) (df, td float64) {
	df = math.Sqrt(1 - zeta*zeta)
	return df, 1 / (freq * df)
}

func zvCoeffs(freq, zeta float64) ([]float64, []float64) {
	df, td := dampedPeriod(freq, zeta)
	k := math.Exp(-zeta * math.Pi / df)
	return []float64{1, k}, []float64{0, 0.5 * td}
}

func zvdCoeffs(freq, zeta float64) ([]float64, []float64) {
	df, td := dampedPeriod(freq, zeta)
	k := math.Exp(-zeta * math.Pi / df)
	return []float64{1, 2 * k, k * k}, []float64{0, 0.5 * td, td}
}

func mzvCoeffs(freq, zeta float64) ([]float64, []float64) {
	df, td := dampedPeriod(freq, zeta)
	k := math.Exp(-0.75 * zeta * math.Pi / df)

	a1 := 1 - 1/math.Sqrt2
	a2 := (math.Sqrt2 - 1) * k
	a3 := a1 * k * k
	return []float64{a1, a2, a3}, []float64{0, 0.375 * td, 0.75 * td}
}

func eiCoeffs(freq, zeta float64) ([]float64, []float64) {
	vtol := 1 / VibrationReduction
	_, td := dampedPeriod(freq, zeta)

	a1 := (0.24968 + 0.24961*vtol) + ((0.80008+1.23328*vtol)+(0.49599+3.17316*vtol)*zeta)*zeta
	a3 := (0.25149 + 0.21474*vtol) + ((-0.83249+1.41498*vtol)+(0.85181-4.90094*vtol)*zeta)*zeta
	a2 := 1 - a1 - a3

	t2 := 0.4999 + (((0.46159+8.57843*vtol)*vtol)+
		(((4.26169-108.644*vtol)*vtol)+
			((1.75601+336.989*vtol)*vtol)*zeta)*zeta)*zeta

	return []float64{a1, a2, a3}, []float64{0, t2 * td, td}
}

// fromExpansion evaluates per-impulse polynomials in zeta for times (in
// periods of freq) and amplitudes.
func fromExpansion(freq, zeta float64, t, a [][]float64) ([]float64, []float64) {
	tau := 1 / freq
	amps := make([]float64, len(a))
	times := make([]float64, len(t))
	for i := range a {
		amps[i] = horner(a[i], zeta)
		times[i] = horner(t[i], zeta) * tau
	}
	return amps, times
}

func horner(c []float64, x float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

func twoHumpCoeffs(freq, zeta float64) ([]float64, []float64) {
	t := [][]float64{
		{0, 0, 0, 0},
		{0.49890, 0.16270, -0.54262, 6.16180},
		{0.99748, 0.18382, -1.58270, 8.17120},
		{1.49920, -0.09297, -0.28338, 1.85710},
	}
	a := [][]float64{
		{0.16054, 0.76699, 2.26560, -1.22750},
		{0.33911, 0.45081, -2.58080, 1.73650},
		{0.34089, -0.61533, -0.68765, 0.42261},
		{0.15997, -0.60246, 1.00280, -0.93145},
	}
	return fromExpansion(freq, zeta, t, a)
}

func threeHumpCoeffs(freq, zeta float64) ([]float64, []float64) {
	t := [][]float64{
		{0, 0, 0, 0},
		{0.49974, 0.23834, 0.44559, 12.4720},
		{0.99849, 0.29808, -2.36460, 23.3990},
		{1.49870, 0.10306, -2.01390, 17.0320},
		{1.99960, -0.28231, 0.61536, 5.40450},
	}
	a := [][]float64{
		{0.11275, 0.76632, 3.29160, -1.44380},
		{0.23698, 0.61164, -2.57850, 4.85220},
		{0.30008, -0.19062, -2.14560, 0.13744},
		{0.23775, -0.73297, 0.46885, -2.08650},
		{0.11244, -0.45439, 0.96382, -1.46000},
	}
	return fromExpansion(freq, zeta, t, a)
}
