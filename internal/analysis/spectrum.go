package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

// zero padding factor applied on top of the next power of two
const padFactor = 8

type PowerSpectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// Spectrum returns the one-sided power spectrum of samples taken every dt.
// The mean is removed and a Hann window applied before transforming.
func Spectrum(samples []float64, dt float64) (PowerSpectrum, error) {
	n := len(samples)
	if n < 2 {
		return PowerSpectrum{}, dynamo.InvalidParameter("spectrum needs at least 2 samples, got %d", n)
	}
	if !(dt > 0) {
		return PowerSpectrum{}, dynamo.InvalidParameter("sample interval must be positive, got %g", dt)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	size := nextPow2(n) * padFactor
	buf := make([]float64, size)
	for i, v := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = (v - mean) * w
	}

	coeffs := fft.FFTReal(buf)
	half := size/2 + 1
	ps := PowerSpectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	df := 1 / (float64(size) * dt)
	for i := 0; i < half; i++ {
		mag := cmplx.Abs(coeffs[i])
		ps.Freqs[i] = float64(i) * df
		ps.Power[i] = mag * mag
	}
	return ps, nil
}

// Peak returns the frequency of the strongest non-DC bin.
func (ps PowerSpectrum) Peak() float64 {
	best := 0
	for i := 1; i < len(ps.Power); i++ {
		if best == 0 || ps.Power[i] > ps.Power[best] {
			best = i
		}
	}
	if best == 0 || ps.Power[best] == 0 {
		return 0
	}
	return ps.Freqs[best]
}

// DominantFrequency is the spectral peak of samples in Hz.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	ps, err := Spectrum(samples, dt)
	if err != nil {
		return 0, err
	}
	return ps.Peak(), nil
}

// ResidualFrequency is the dominant frequency of x2 over the tail that starts
// at the grid sample nearest endTime. The trajectory must be uniformly sampled.
func ResidualFrequency(traj *dynamo.Trajectory, endTime float64) (float64, error) {
	if traj == nil || traj.Len() < 2 {
		return 0, dynamo.InvalidParameter("trajectory too short for a spectrum")
	}
	start := dynamo.NearestIndex(traj.Times, endTime)
	tail := traj.Component(physics.X2)[start:]
	return DominantFrequency(tail, traj.Times[1]-traj.Times[0])
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
