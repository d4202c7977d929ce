package integrators

import (
	"math"

	"github.com/san-kum/shapesim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. The last row of dpA holds the fifth-order
// weights, so its stage is the step result and the following derivative is
// evaluated at the new state (first same as last).
var (
	dpA = [6][]float64{
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpC = [6]float64{1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}

	// fifth minus fourth order weights
	dpE = [7]float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40}
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fifth-order step of size dt without error control.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _ := r.step(dyn, x, t, dt, dynamo.DefaultTolerances())
	return xNew
}

// StepAdaptive attempts a step of size dt. The step is accepted when the
// scaled RMS error estimate is at most 1, with scale abs + rel*max(|x|, |xNew|).
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerances) (dynamo.State, float64, bool) {
	xNew, errNorm := r.step(dyn, x, t, dt, tol)

	if math.IsNaN(errNorm) {
		return xNew, dt * r.minScale, false
	}

	if errNorm > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
		return xNew, dt * scale, false
	}

	if errNorm == 0 {
		return xNew, dt * r.maxScale, true
	}
	scale := math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	return xNew, dt * scale, true
}

func (r *RK45) step(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerances) (dynamo.State, float64) {
	n := len(x)

	var k [7]dynamo.State
	k[0] = dyn.Derive(x, t)

	var xNew dynamo.State
	for s, row := range dpA {
		xs := make(dynamo.State, n)
		for i := range xs {
			acc := 0.0
			for j, a := range row {
				acc += a * k[j][i]
			}
			xs[i] = x[i] + dt*acc
		}
		k[s+1] = dyn.Derive(xs, t+dpC[s]*dt)
		xNew = xs
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := 0.0
		for j, e := range dpE {
			errEst += e * k[j][i]
		}
		scale := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		ratio := dt * errEst / scale
		sum += ratio * ratio
	}

	return xNew, math.Sqrt(sum / float64(n))
}
