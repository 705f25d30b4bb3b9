package sim

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
)

func binarySetup(dt float64) Setup {
	ps, err := physics.NewBuilder(dt).
		Add(dynamo.Vec2{X: -1}, dynamo.Vec2{Y: -0.5}, 1, 0.1, "A").
		Add(dynamo.Vec2{X: 1}, dynamo.Vec2{Y: 0.5}, 1, 0.1, "B").
		Build()
	Expect(err).NotTo(HaveOccurred())
	return Setup{Name: "binary", Particles: ps, Params: Params{G: 1, Dt: dt, Restitution: 0.75, Collisions: true}}
}

var _ = Describe("Simulation", func() {
	var s *Simulation

	BeforeEach(func() {
		var err error
		s, err = New(binarySetup(0.01))
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts paused at t=0", func() {
		Expect(s.Phase()).To(Equal(Paused))
		Expect(s.Elapsed()).To(BeZero())
		Expect(s.Steps()).To(BeZero())
	})

	Describe("Tick", func() {
		It("does nothing while paused", func() {
			before := s.Particles()
			Expect(s.Tick()).To(BeFalse())
			Expect(s.Elapsed()).To(BeZero())
			Expect(cmp.Diff(before, s.Particles())).To(BeEmpty())
		})

		It("advances exactly one tick while running", func() {
			s.Resume()
			Expect(s.Tick()).To(BeTrue())
			Expect(s.Steps()).To(Equal(1))
			Expect(s.Elapsed()).To(BeNumerically("~", 0.01, 1e-15))
		})
	})

	Describe("Toggle", func() {
		It("alternates between paused and running", func() {
			Expect(s.Toggle()).To(Equal(Running))
			Expect(s.Toggle()).To(Equal(Paused))
		})

		It("is a no-op to pause twice", func() {
			s.Pause()
			s.Pause()
			Expect(s.Phase()).To(Equal(Paused))
		})
	})

	Describe("Reset", func() {
		var initial []physics.Particle

		BeforeEach(func() {
			initial = s.Particles()
			s.Resume()
			for i := 0; i < 25; i++ {
				s.Tick()
			}
			Expect(s.ChangeSpeed(0.05)).To(Succeed())
		})

		It("restores the snapshot, default dt and clock, and pauses", func() {
			s.Reset()

			Expect(s.Phase()).To(Equal(Paused))
			Expect(s.Elapsed()).To(BeZero())
			Expect(s.Steps()).To(BeZero())
			Expect(s.Dt()).To(Equal(0.01))
			Expect(cmp.Diff(initial, s.Particles())).To(BeEmpty())
		})

		It("replays identically after reset", func() {
			s.Reset()
			Expect(s.ChangeSpeed(0.05)).To(Succeed())
			s.Reset()

			s.Resume()
			for i := 0; i < 10; i++ {
				s.Tick()
			}
			first := s.Particles()

			s.Reset()
			s.Resume()
			for i := 0; i < 10; i++ {
				s.Tick()
			}
			Expect(cmp.Diff(first, s.Particles())).To(BeEmpty())
		})
	})

	Describe("Switch", func() {
		It("loads the new setup paused at t=0", func() {
			s.Resume()
			s.Tick()

			next := binarySetup(0.5)
			next.Name = "wide"
			Expect(s.Switch(next)).To(Succeed())

			Expect(s.Name()).To(Equal("wide"))
			Expect(s.Phase()).To(Equal(Paused))
			Expect(s.Elapsed()).To(BeZero())
			Expect(s.Dt()).To(Equal(0.5))
			Expect(s.DefaultDt()).To(Equal(0.5))
		})

		It("keeps the current setup when the new one is invalid", func() {
			s.Resume()
			s.Tick()

			err := s.Switch(Setup{Name: "broken", Params: Params{Dt: -1}})
			Expect(err).To(MatchError(dynamo.ErrNonPositiveStep))

			Expect(s.Name()).To(Equal("binary"))
			Expect(s.Phase()).To(Equal(Running))
			Expect(s.Steps()).To(Equal(1))
		})

		It("replaces the metric set when given one", func() {
			s.SetMetrics(metrics.NewEnergy())

			Expect(s.Switch(binarySetup(0.02), metrics.NewStability(50), metrics.NewClosestApproach())).To(Succeed())
			Expect(s.MetricNames()).To(Equal([]string{"stability", "closest_approach"}))

			Expect(s.Switch(binarySetup(0.01))).To(Succeed())
			Expect(s.MetricNames()).To(Equal([]string{"stability", "closest_approach"}))
		})

		It("keeps the metric set when the new setup is invalid", func() {
			s.SetMetrics(metrics.NewEnergy())

			err := s.Switch(Setup{Name: "broken", Params: Params{Dt: -1}}, metrics.NewStability(1))
			Expect(err).To(HaveOccurred())
			Expect(s.MetricNames()).To(Equal([]string{"energy"}))
		})
	})

	Describe("ChangeSpeed", func() {
		It("keeps the phase and the clock", func() {
			s.Resume()
			s.Tick()
			Expect(s.SpeedUp()).To(Succeed())
			Expect(s.Phase()).To(Equal(Running))
			Expect(s.Steps()).To(Equal(1))
			Expect(s.SpeedRatio()).To(BeNumerically("~", 1.05, 1e-12))
		})
	})
})
