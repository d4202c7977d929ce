package metrics

import (
	"math"

	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

// PeakDeflection is the largest spring stretch |x2-x1| seen.
type PeakDeflection struct {
	name string
	peak float64
}

func NewPeakDeflection() *PeakDeflection {
	return &PeakDeflection{name: "peak_deflection"}
}

func (p *PeakDeflection) Name() string { return p.name }

func (p *PeakDeflection) Observe(x dynamo.State, u, t float64) {
	if len(x) <= physics.X2 {
		return
	}
	p.peak = math.Max(p.peak, math.Abs(x[physics.X2]-x[physics.X1]))
}

func (p *PeakDeflection) Value() float64 { return p.peak }

func (p *PeakDeflection) Reset() { p.peak = 0 }
