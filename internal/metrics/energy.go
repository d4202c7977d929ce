package metrics

import (
	"github.com/san-kum/shapesim/internal/dynamo"
)

// ResidualEnergy is the system energy at the last observed sample. The
// centre-of-mass kinetic term vanishes once the move is over, so what is left
// is vibration.
type ResidualEnergy struct {
	name string
	sys  dynamo.Hamiltonian
	last float64
}

func NewResidualEnergy(sys dynamo.Hamiltonian) *ResidualEnergy {
	return &ResidualEnergy{
		name: "residual_energy",
		sys:  sys,
	}
}

func (e *ResidualEnergy) Name() string { return e.name }

func (e *ResidualEnergy) Observe(x dynamo.State, u, t float64) {
	if e.sys == nil {
		return
	}
	e.last = e.sys.Energy(x)
}

func (e *ResidualEnergy) Value() float64 {
	return e.last
}

func (e *ResidualEnergy) Reset() {
	e.last = 0
}
