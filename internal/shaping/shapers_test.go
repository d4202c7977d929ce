package shaping

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

func TestDesignNormalized(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(string(def.Type), func(t *testing.T) {
			for _, zeta := range []float64{0, 0.05, def.MaxDamping / 2} {
				s, err := Design(def.Type, 2.5, zeta)
				require.NoError(t, err)
				require.NotEmpty(t, s)

				assert.InDelta(t, 1.0, s.Sum(), 1e-12)
				assert.Equal(t, 0.0, s[0].Time)
				for i := 1; i < len(s); i++ {
					assert.Greater(t, s[i].Time, s[i-1].Time, "impulse times must increase")
				}
				for _, imp := range s {
					assert.Greater(t, imp.Amplitude, 0.0)
				}
				assert.NoError(t, s.Validate())
			}
		})
	}
}

func TestZVUndamped(t *testing.T) {
	s, err := Design(ZV, 2, 0)
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.InDelta(t, 0.5, s[0].Amplitude, 1e-12)
	assert.InDelta(t, 0.5, s[1].Amplitude, 1e-12)
	assert.InDelta(t, 0.25, s[1].Time, 1e-12)
	assert.InDelta(t, 0.25, Duration(s), 1e-12)
}

func TestZVDamped(t *testing.T) {
	zeta := 0.1
	s, err := Design(ZV, 1, zeta)
	require.NoError(t, err)

	df := math.Sqrt(1 - zeta*zeta)
	k := math.Exp(-zeta * math.Pi / df)
	assert.InDelta(t, 1/(1+k), s[0].Amplitude, 1e-12)
	assert.InDelta(t, k/(1+k), s[1].Amplitude, 1e-12)
	assert.InDelta(t, 0.5/df, s[1].Time, 1e-12)
}

func TestZVDUndamped(t *testing.T) {
	s, err := Design(ZVD, 1, 0)
	require.NoError(t, err)
	require.Len(t, s, 3)

	assert.InDelta(t, 0.25, s[0].Amplitude, 1e-12)
	assert.InDelta(t, 0.5, s[1].Amplitude, 1e-12)
	assert.InDelta(t, 0.25, s[2].Amplitude, 1e-12)
	assert.InDelta(t, 1.0, s[2].Time, 1e-12)
}

// A ZV shaper cancels an undamped mode: the two impulse responses are half a
// period apart with equal weight.
func TestZVCancelsMode(t *testing.T) {
	freq := 1.3
	s, err := Design(ZV, freq, 0)
	require.NoError(t, err)

	w := 2 * math.Pi * freq
	var re, im float64
	for _, imp := range s {
		re += imp.Amplitude * math.Cos(w*imp.Time)
		im += imp.Amplitude * math.Sin(w*imp.Time)
	}
	assert.InDelta(t, 0, math.Hypot(re, im), 1e-12)
}

func TestImpulseCounts(t *testing.T) {
	counts := map[Type]int{ZV: 2, MZV: 3, ZVD: 3, EI: 3, TwoHump: 4, ThreeHump: 5}
	for typ, n := range counts {
		s, err := Design(typ, 5, DefaultDamping)
		require.NoError(t, err)
		assert.Len(t, s, n, "type %s", typ)
		assert.LessOrEqual(t, len(s), command.MaxShaperImpulses)
	}
}

func TestDesignNone(t *testing.T) {
	s, err := Design(None, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, 0.0, Duration(s))
}

func TestDesignErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		freq float64
		zeta float64
	}{
		{"unknown type", Type("bogus"), 1, 0.1},
		{"zero frequency", ZV, 0, 0.1},
		{"negative frequency", ZVD, -1, 0.1},
		{"nan frequency", EI, math.NaN(), 0.1},
		{"negative damping", MZV, 1, -0.1},
		{"ei damping too high", EI, 1, 0.4},
		{"3hump damping too high", ThreeHump, 1, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Design(tt.typ, tt.freq, tt.zeta)
			assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)
		})
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" ZVD ")
	require.NoError(t, err)
	assert.Equal(t, ZVD, typ)

	typ, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, None, typ)

	_, err = ParseType("fast")
	assert.ErrorIs(t, err, dynamo.ErrInvalidParameter)

	assert.Equal(t, None, Types()[0])
	assert.Len(t, Types(), len(Definitions())+1)
}
