package physics

import "github.com/san-kum/gravsim/internal/dynamo"

// InContact reports whether a and b touch or interpenetrate.
func InContact(a, b *Particle) bool {
	return dynamo.Distance(a.Position, b.Position) <= a.Radius+b.Radius
}

// Impulse computes the collision response between a and b as adjustments
// to subtract from each PrevPosition. The impulse acts along the normal
// from a to b with coefficient of restitution e. Coincident or separating
// bodies receive no impulse.
func Impulse(a, b *Particle, e, dt float64) (da, db dynamo.Vec2) {
	n, ok := b.Position.Sub(a.Position).Unit()
	if !ok {
		return dynamo.Vec2{}, dynamo.Vec2{}
	}

	rel := b.Velocity(dt).Sub(a.Velocity(dt))
	vn := rel.Dot(n)
	if vn > 0 {
		return dynamo.Vec2{}, dynamo.Vec2{}
	}

	j := -(1 + e) * vn / (1/a.Mass + 1/b.Mass)
	impulse := n.Scale(j)

	dva := impulse.Scale(-1 / a.Mass)
	dvb := impulse.Scale(1 / b.Mass)
	return dva.Scale(dt), dvb.Scale(dt)
}

// ResolveCollisions applies the impulse of every pair in contact once, in
// pair order. Each adjustment lands before the next pair is examined, so
// later pairs see the updated velocities. It returns the number of pairs
// that exchanged an impulse.
func ResolveCollisions(ps []Particle, e, dt float64) int {
	n := len(ps)
	hits := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !InContact(&ps[i], &ps[j]) {
				continue
			}
			da, db := Impulse(&ps[i], &ps[j], e, dt)
			if da == (dynamo.Vec2{}) && db == (dynamo.Vec2{}) {
				continue
			}
			ps[i].PrevPosition = ps[i].PrevPosition.Sub(da)
			ps[j].PrevPosition = ps[j].PrevPosition.Sub(db)
			hits++
		}
	}
	return hits
}
