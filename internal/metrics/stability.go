package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Stability is the fraction of frames in which every particle stayed
// within threshold meters of the centre of mass.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f Frame) {
	s.samples++
	cm := CenterOfMass(f.Particles)
	for i := range f.Particles {
		if dynamo.Distance(cm, f.Particles[i].Position) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// ClosestApproach tracks the smallest centre distance between any two
// particles. It reports 0 until a frame with two or more particles has
// been observed.
type ClosestApproach struct {
	name string
	min  float64
	seen bool
}

func NewClosestApproach() *ClosestApproach {
	return &ClosestApproach{name: "closest_approach", min: math.Inf(1)}
}

func (c *ClosestApproach) Name() string { return c.name }

func (c *ClosestApproach) Observe(f Frame) {
	ps := f.Particles
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			c.min = math.Min(c.min, dynamo.Distance(ps[i].Position, ps[j].Position))
			c.seen = true
		}
	}
}

func (c *ClosestApproach) Value() float64 {
	if !c.seen {
		return 0
	}
	return c.min
}

func (c *ClosestApproach) Reset() {
	c.min = math.Inf(1)
	c.seen = false
}
