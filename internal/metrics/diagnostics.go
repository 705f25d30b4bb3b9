package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Frame is the read-only view of an ensemble handed to diagnostics.
type Frame struct {
	Particles []physics.Particle
	G         float64
	Dt        float64
	Time      float64
	Step      int
}

// Sample is the full set of diagnostics for one frame.
type Sample struct {
	Time            float64     `json:"time"`
	Kinetic         float64     `json:"kinetic"`
	Potential       float64     `json:"potential"`
	Total           float64     `json:"total"`
	Momentum        dynamo.Vec2 `json:"momentum"`
	AngularMomentum float64     `json:"angular_momentum"`
}

// Measure evaluates every diagnostic for f.
func Measure(f Frame) Sample {
	ke := KineticEnergy(f.Particles, f.Dt)
	pe := PotentialEnergy(f.Particles, f.G)
	return Sample{
		Time:            f.Time,
		Kinetic:         ke,
		Potential:       pe,
		Total:           ke + pe,
		Momentum:        LinearMomentum(f.Particles, f.Dt),
		AngularMomentum: AngularMomentum(f.Particles, f.Dt),
	}
}

// KineticEnergy returns Σ ½·m·|v|² with velocities from the position history.
func KineticEnergy(ps []physics.Particle, dt float64) float64 {
	ke := 0.0
	for i := range ps {
		v := ps[i].Velocity(dt)
		ke += 0.5 * ps[i].Mass * v.Len2()
	}
	return ke
}

// PotentialEnergy returns Σ_{i<j} -G·mi·mj/dij. Coincident pairs are
// skipped rather than contributing -Inf.
func PotentialEnergy(ps []physics.Particle, g float64) float64 {
	pe := 0.0
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			d := dynamo.Distance(ps[i].Position, ps[j].Position)
			if d == 0 {
				continue
			}
			pe -= g * ps[i].Mass * ps[j].Mass / d
		}
	}
	return pe
}

func TotalEnergy(ps []physics.Particle, g, dt float64) float64 {
	return KineticEnergy(ps, dt) + PotentialEnergy(ps, g)
}

// LinearMomentum returns Σ m·v.
func LinearMomentum(ps []physics.Particle, dt float64) dynamo.Vec2 {
	var p dynamo.Vec2
	for i := range ps {
		p = p.Add(ps[i].Velocity(dt).Scale(ps[i].Mass))
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position, or the origin for
// an empty ensemble.
func CenterOfMass(ps []physics.Particle) dynamo.Vec2 {
	var sum dynamo.Vec2
	total := 0.0
	for i := range ps {
		sum = sum.Add(ps[i].Position.Scale(ps[i].Mass))
		total += ps[i].Mass
	}
	if total == 0 {
		return dynamo.Vec2{}
	}
	return sum.Scale(1 / total)
}

// AngularMomentum returns Σ m·(r - r_cm) × v, the scalar angular momentum
// about the centre of mass.
func AngularMomentum(ps []physics.Particle, dt float64) float64 {
	cm := CenterOfMass(ps)
	l := 0.0
	for i := range ps {
		r := ps[i].Position.Sub(cm)
		l += ps[i].Mass * r.Cross(ps[i].Velocity(dt))
	}
	return l
}
