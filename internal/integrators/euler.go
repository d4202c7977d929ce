package integrators

import "github.com/san-kum/shapesim/internal/dynamo"

// Euler is the explicit first-order method. Only useful as a baseline.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}
