package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
	"github.com/san-kum/shapesim/internal/physics"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, 1, 0)
	m.Observe(nil, -1, 1)
	m.Observe(nil, 0, 2)
	m.Observe(nil, 0, 3)

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestControlEffortIgnoresSpringDeflection(t *testing.T) {
	m := NewControlEffort()
	// large deflection between the masses, no command
	m.Observe([]float64{0, 0, 1, 0}, 0, 0)
	m.Observe([]float64{0, 0, -1, 0}, 0, 1)

	if m.Value() != 0 {
		t.Errorf("expected zero effort with no command, got %f", m.Value())
	}
}

func TestPeakDeflection(t *testing.T) {
	m := NewPeakDeflection()
	m.Observe(dynamo.State{0, 0, 0.1, 0}, 0, 0)
	m.Observe(dynamo.State{1, 0, 0.7, 0}, 0, 1)
	m.Observe(dynamo.State{2, 0, 2.2, 0}, 0, 2)

	if math.Abs(m.Value()-0.3) > 1e-12 {
		t.Errorf("expected 0.3, got %f", m.Value())
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(0.01)
	m.Observe(dynamo.State{0, 0, 0, 0}, 0, 0)
	m.Observe(dynamo.State{0, 0, 0.5, 0}, 0, 1)
	m.Observe(dynamo.State{0, 0, -0.02, 0}, 0, 2)
	m.Observe(dynamo.State{0, 0, 0.005, 0}, 0, 3)

	if m.Value() != 2 {
		t.Errorf("expected settling at 2, got %f", m.Value())
	}

	m.Reset()
	m.Observe(dynamo.State{0, 0, 0.001, 0}, 0, 5)
	if m.Value() != 0 {
		t.Errorf("expected 0 when never outside band, got %f", m.Value())
	}
}

func TestResidualEnergy(t *testing.T) {
	sys, err := physics.NewTwoMass(physics.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	m := NewResidualEnergy(sys)

	m.Observe(dynamo.State{0, 3, 0, 0}, 0, 0)
	m.Observe(dynamo.State{0, 0, 0.1, 0}, 0, 1)

	expected := 0.5 * physics.DefaultStiffness * 0.01
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected %f, got %f", expected, m.Value())
	}
}

func TestEvaluate(t *testing.T) {
	gen, err := command.NewGenerator(command.Move{
		Distance:  1,
		StartTime: 0.5,
		Limits:    command.MotionLimits{MaxAccel: 1, MaxVel: 1},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	// accel is +1 on (0.5, 1.5] and -1 on (1.5, 2.5]
	traj := &dynamo.Trajectory{}
	for _, tm := range []float64{0, 1, 2, 3} {
		traj.Times = append(traj.Times, tm)
		traj.States = append(traj.States, dynamo.State{0, 0, 0, 0})
	}

	effort := NewControlEffort()
	effort.Observe(nil, 100, 0)

	values := Evaluate(traj, gen, effort, NewPeakDeflection())
	if values["control_effort"] != 0.5 {
		t.Errorf("expected control effort 0.5, got %f", values["control_effort"])
	}
	if values["peak_deflection"] != 0 {
		t.Errorf("expected zero deflection, got %f", values["peak_deflection"])
	}
}
