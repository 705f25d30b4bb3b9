package integrators

import "github.com/san-kum/gravsim/internal/physics"

// Verlet is the Störmer-Verlet position integrator. It advances each
// particle from its (Position, PrevPosition) pair without an explicit
// velocity:
//
//	x' = 2x - x_prev + (F/m)·dt²
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

// Integrate advances every particle exactly once.
func (v *Verlet) Integrate(ps []physics.Particle, dt float64) {
	dt2 := dt * dt
	for i := range ps {
		Step(&ps[i], dt2)
	}
}

// Step advances a single particle; dt2 is the squared tick duration.
func Step(p *physics.Particle, dt2 float64) {
	ax := p.Force.X / p.Mass
	ay := p.Force.Y / p.Mass

	nx := 2*p.Position.X - p.PrevPosition.X + ax*dt2
	ny := 2*p.Position.Y - p.PrevPosition.Y + ay*dt2

	p.PrevPosition = p.Position
	p.Position.X = nx
	p.Position.Y = ny
}
