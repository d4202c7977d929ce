package integrators

import "github.com/san-kum/shapesim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method. It reuses stage
// buffers between calls and must not be shared between goroutines.
type RK4 struct {
	k      [4]dynamo.State
	interm dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) buffers(n int) {
	if len(r.interm) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.interm = make(dynamo.State, n)
}

// offset writes x + h*k into dst.
func offset(dst, x dynamo.State, h float64, k dynamo.State) dynamo.State {
	for i := range dst {
		dst[i] = x[i] + h*k[i]
	}
	return dst
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.buffers(len(x))
	half := dt / 2

	copy(r.k[0], dyn.Derive(x, t))
	copy(r.k[1], dyn.Derive(offset(r.interm, x, half, r.k[0]), t+half))
	copy(r.k[2], dyn.Derive(offset(r.interm, x, half, r.k[1]), t+half))
	copy(r.k[3], dyn.Derive(offset(r.interm, x, dt, r.k[2]), t+dt))

	out := make(dynamo.State, len(x))
	for i := range out {
		out[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return out
}
