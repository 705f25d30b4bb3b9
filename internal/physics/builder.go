package physics

import "github.com/san-kum/gravsim/internal/dynamo"

// Builder assembles an ensemble and issues each particle a sequence number.
// The first construction error is kept and returned by Build.
type Builder struct {
	dt        float64
	next      uint64
	particles []Particle
	err       error
}

// NewBuilder returns a builder whose particles derive their position
// history from dt. IDs start at 1.
func NewBuilder(dt float64) *Builder {
	return &Builder{dt: dt, next: 1}
}

// Add appends a particle. Errors are deferred to Build.
func (b *Builder) Add(pos, vel dynamo.Vec2, mass, radius float64, label string) *Builder {
	if b.err != nil {
		return b
	}
	p, err := NewParticle(pos, vel, mass, radius, b.dt, label)
	if err != nil {
		b.err = err
		return b
	}
	p.ID = b.next
	b.next++
	b.particles = append(b.particles, p)
	return b
}

// Build returns the ensemble in insertion order.
func (b *Builder) Build() ([]Particle, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.particles == nil {
		return []Particle{}, nil
	}
	return Clone(b.particles), nil
}

// NextID returns the sequence number the next particle will receive.
func (b *Builder) NextID() uint64 { return b.next }
