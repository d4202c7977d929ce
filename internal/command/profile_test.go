package command_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/shapesim/internal/command"
	"github.com/san-kum/shapesim/internal/dynamo"
)

// integrate double-integrates the command with a midpoint rule and returns
// the velocity and position at tEnd.
func integrate(g *command.Generator, tEnd, dt float64) (vel, pos float64) {
	steps := int(math.Ceil(tEnd / dt))
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		a := g.Accel(t + dt/2)
		pos += vel*dt + 0.5*a*dt*dt
		vel += a * dt
	}
	return vel, pos
}

var unitLimits = command.MotionLimits{MaxAccel: 1, MaxVel: 1}

var _ = Describe("Plan", func() {
	DescribeTable("chooses the profile kind from the coast duration",
		func(limits command.MotionLimits, distance float64, kind command.Kind, switches int) {
			p, err := command.Plan(command.Move{Distance: distance, StartTime: 0.5, Limits: limits})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Kind).To(Equal(kind))
			Expect(p.Switches).To(HaveLen(switches))
		},
		Entry("short move is bang-bang", unitLimits, 0.5, command.BangBang, 3),
		Entry("boundary d/v == v/a is bang-bang", unitLimits, 1.0, command.BangBang, 3),
		Entry("long move is bang-coast-bang", unitLimits, 1.5, command.BangCoastBang, 4),
		Entry("boundary with v=2 a=4", command.MotionLimits{MaxAccel: 4, MaxVel: 2}, 1.0, command.BangBang, 3),
		Entry("just past boundary with v=2 a=4", command.MotionLimits{MaxAccel: 4, MaxVel: 2}, 1.25, command.BangCoastBang, 4),
	)

	It("uses the formula switch times for bang-coast-bang", func() {
		p, err := command.Plan(command.Move{Distance: 3, StartTime: 0.5, Limits: unitLimits})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Switches).To(Equal([]command.SwitchPoint{
			{Time: 0.5, Coeff: 1},
			{Time: 1.5, Coeff: -1},
			{Time: 3.5, Coeff: -1},
			{Time: 4.5, Coeff: 1},
		}))
		Expect(p.EndTime()).To(Equal(4.5))
	})

	It("uses square-root switch times for bang-bang", func() {
		p, err := command.Plan(command.Move{Distance: 0.25, StartTime: 0, Limits: unitLimits})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Switches).To(Equal([]command.SwitchPoint{
			{Time: 0, Coeff: 1},
			{Time: 0.5, Coeff: -2},
			{Time: 1.0, Coeff: 1},
		}))
	})

	It("ends at t2 + t3 - t1 for the reference two-mass move", func() {
		move := command.Move{Distance: 1, StartTime: 0.5, Limits: unitLimits}
		p, err := command.Plan(move)
		Expect(err).NotTo(HaveOccurred())

		t1 := move.StartTime
		t2 := move.Limits.MaxVel/move.Limits.MaxAccel + t1
		t3 := move.Distance/move.Limits.MaxVel + t1
		Expect(p.EndTime()).To(Equal(t2 + t3 - t1))

		// Zero-length coast: both forms describe the same command.
		g, err := command.NewGenerator(move, command.Shaper{{Time: 0, Amplitude: 1}})
		Expect(err).NotTo(HaveOccurred())
		for t := 0.0; t < 3.0; t += 0.01 {
			Expect(p.At(t)).To(Equal(g.Accel(t)))
		}
	})
})

var _ = Describe("Generator", func() {
	It("is zero before the start and after the end", func() {
		g, err := command.NewGenerator(command.Move{Distance: 3, StartTime: 0.5, Limits: unitLimits}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Accel(-1)).To(Equal(0.0))
		Expect(g.Accel(0.25)).To(Equal(0.0))
		Expect(g.Accel(10)).To(Equal(0.0))
	})

	It("treats the switch time itself as before the step", func() {
		g, err := command.NewGenerator(command.Move{Distance: 3, StartTime: 0.5, Limits: unitLimits}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Accel(0.5)).To(Equal(0.0))
		Expect(g.Accel(math.Nextafter(0.5, 1))).To(Equal(1.0))
		Expect(g.Accel(1.5)).To(Equal(1.0))
		Expect(g.Accel(2.0)).To(Equal(0.0))
		Expect(g.Accel(3.5)).To(Equal(0.0))
		Expect(g.Accel(4.0)).To(Equal(-1.0))
		Expect(g.Accel(4.5)).To(Equal(-1.0))
	})

	It("commands nothing for a zero-distance move", func() {
		g, err := command.NewGenerator(command.Move{Distance: 0, StartTime: 0.5, Limits: unitLimits}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Profile().Kind).To(Equal(command.BangBang))
		for _, t := range []float64{0, 0.5, 0.6, 1, 5} {
			Expect(g.Accel(t)).To(Equal(0.0))
		}
	})

	DescribeTable("returns to rest at the commanded distance",
		func(distance float64) {
			g, err := command.NewGenerator(command.Move{Distance: distance, StartTime: 0.5, Limits: unitLimits}, nil)
			Expect(err).NotTo(HaveOccurred())
			vel, pos := integrate(g, g.EndTime(), 1e-5)
			Expect(vel).To(BeNumerically("~", 0, 1e-4))
			Expect(pos).To(BeNumerically("~", distance, 1e-3))
		},
		Entry("bang-bang", 0.5),
		Entry("boundary", 1.0),
		Entry("bang-coast-bang", 3.0),
	)

	It("matches the unshaped bang-coast-bang profile for a unit shaper", func() {
		move := command.Move{Distance: 2.5, StartTime: 0.5, Limits: unitLimits}
		unshaped, err := command.NewGenerator(move, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(unshaped.Profile().Kind).To(Equal(command.BangCoastBang))
		shaped, err := command.NewGenerator(move, command.Shaper{{Time: 0, Amplitude: 1}})
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i <= 1000; i++ {
			t := float64(i) * 0.005
			Expect(shaped.Accel(t)).To(Equal(unshaped.Accel(t)), "t=%v", t)
		}
		for _, sw := range unshaped.Profile().Switches {
			Expect(shaped.Accel(sw.Time)).To(Equal(unshaped.Accel(sw.Time)))
		}
	})

	It("never collapses a shaped command to bang-bang", func() {
		move := command.Move{Distance: 0.5, StartTime: 0.5, Limits: unitLimits}
		unshaped, err := command.NewGenerator(move, nil)
		Expect(err).NotTo(HaveOccurred())
		shaped, err := command.NewGenerator(move, command.Shaper{{Time: 0, Amplitude: 1}})
		Expect(err).NotTo(HaveOccurred())

		Expect(unshaped.Accel(1.3)).To(Equal(-1.0))
		Expect(shaped.Accel(1.3)).To(Equal(0.0))

		Expect(unshaped.IssuedProfile().Kind).To(Equal(command.BangBang))
		Expect(shaped.IssuedProfile().Kind).To(Equal(command.BangCoastBang))
		Expect(shaped.IssuedProfile().Switches).To(HaveLen(4))
		Expect(shaped.Profile().Switches).To(HaveLen(3))
	})

	It("superposes delayed, scaled copies per impulse", func() {
		move := command.Move{Distance: 3, StartTime: 0.5, Limits: unitLimits}
		shaper := command.Shaper{{Time: 0, Amplitude: 0.5}, {Time: 0.25, Amplitude: 0.5}}
		g, err := command.NewGenerator(move, shaper)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Accel(0.6)).To(Equal(0.5))
		Expect(g.Accel(0.8)).To(Equal(1.0))
		Expect(g.Accel(1.6)).To(Equal(0.5))
		Expect(g.Accel(1.8)).To(Equal(0.0))
		Expect(g.ShapedEndTime()).To(Equal(4.75))
		Expect(g.EndTime()).To(Equal(4.5))

		vel, pos := integrate(g, g.ShapedEndTime(), 1e-5)
		Expect(vel).To(BeNumerically("~", 0, 1e-4))
		Expect(pos).To(BeNumerically("~", 3, 1e-3))
	})

	It("does not alias the caller's shaper", func() {
		shaper := command.Shaper{{Time: 0, Amplitude: 1}}
		g, err := command.NewGenerator(command.Move{Distance: 3, StartTime: 0, Limits: unitLimits}, shaper)
		Expect(err).NotTo(HaveOccurred())
		shaper[0].Amplitude = 100
		Expect(g.Accel(0.1)).To(Equal(1.0))
	})
})

var _ = Describe("CommandedAcceleration", func() {
	It("evaluates a single query", func() {
		a, err := command.CommandedAcceleration(unitLimits, 3, 0.5, 1.0, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(1.0))
	})

	DescribeTable("rejects non-positive limits",
		func(limits command.MotionLimits) {
			_, err := command.CommandedAcceleration(limits, 1, 0, 1, nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("zero accel", command.MotionLimits{MaxAccel: 0, MaxVel: 1}),
		Entry("negative accel", command.MotionLimits{MaxAccel: -1, MaxVel: 1}),
		Entry("zero velocity", command.MotionLimits{MaxAccel: 1, MaxVel: 0}),
		Entry("NaN velocity", command.MotionLimits{MaxAccel: 1, MaxVel: math.NaN()}),
	)

	It("rejects a negative distance", func() {
		_, err := command.CommandedAcceleration(unitLimits, -1, 0, 1, nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("accepts nine impulses and rejects ten", func() {
		shaper := make(command.Shaper, command.MaxShaperImpulses)
		for i := range shaper {
			shaper[i] = command.ShaperImpulse{Time: float64(i) * 0.1, Amplitude: 1.0 / 9}
		}
		_, err := command.CommandedAcceleration(unitLimits, 3, 0, 1, shaper)
		Expect(err).NotTo(HaveOccurred())

		shaper = append(shaper, command.ShaperImpulse{Time: 1, Amplitude: 0})
		_, err = command.CommandedAcceleration(unitLimits, 3, 0, 1, shaper)
		Expect(err).To(MatchError(dynamo.ErrUnsupportedShaperLength))
	})

	It("rejects negative impulse times", func() {
		_, err := command.CommandedAcceleration(unitLimits, 3, 0, 1, command.Shaper{{Time: -0.1, Amplitude: 1}})
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})
})
