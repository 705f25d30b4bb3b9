package physics

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// HiddenLabel marks a particle whose label should not be displayed.
const HiddenLabel = "/"

// Particle is a point mass whose velocity is carried implicitly by its
// position history: v = (Position - PrevPosition) / dt.
type Particle struct {
	ID           uint64
	Position     dynamo.Vec2
	PrevPosition dynamo.Vec2
	Radius       float64
	Mass         float64
	Force        dynamo.Vec2
	Label        string
}

// NewParticle creates a particle at pos moving with vel. PrevPosition is
// set to pos - vel*dt so the first Verlet step reproduces vel.
func NewParticle(pos, vel dynamo.Vec2, mass, radius, dt float64, label string) (Particle, error) {
	if !(mass > 0) {
		return Particle{}, fmt.Errorf("particle %q: mass %g: %w", label, mass, dynamo.ErrNonPositiveMass)
	}
	if radius < 0 {
		return Particle{}, fmt.Errorf("particle %q: radius %g: %w", label, radius, dynamo.ErrNegativeRadius)
	}
	if !(dt > 0) {
		return Particle{}, fmt.Errorf("particle %q: dt %g: %w", label, dt, dynamo.ErrNonPositiveStep)
	}
	return Particle{
		Position:     pos,
		PrevPosition: pos.Sub(vel.Scale(dt)),
		Radius:       radius,
		Mass:         mass,
		Label:        label,
	}, nil
}

// Velocity derives the particle velocity from its position history.
func (p *Particle) Velocity(dt float64) dynamo.Vec2 {
	return p.Position.Sub(p.PrevPosition).Scale(1 / dt)
}

// SetVelocity rewrites PrevPosition so that Velocity(dt) returns vel.
func (p *Particle) SetVelocity(vel dynamo.Vec2, dt float64) {
	p.PrevPosition = p.Position.Sub(vel.Scale(dt))
}

// Visible reports whether the particle carries a displayable label.
func (p *Particle) Visible() bool {
	return p.Label != "" && p.Label != HiddenLabel
}

// Clone returns an independent copy of ps.
func Clone(ps []Particle) []Particle {
	if ps == nil {
		return nil
	}
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}
