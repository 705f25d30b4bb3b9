package physics

import "github.com/san-kum/gravsim/internal/dynamo"

// Overlapping reports whether a and b interpenetrate.
func Overlapping(a, b *Particle) bool {
	return dynamo.Distance(a.Position, b.Position) < a.Radius+b.Radius
}

// Separation returns the position shifts that push a and b apart along
// their centre line, split in inverse proportion to mass. ok is false when
// the bodies do not overlap or their centres coincide.
func Separation(a, b *Particle) (da, db dynamo.Vec2, ok bool) {
	delta := b.Position.Sub(a.Position)
	overlap := a.Radius + b.Radius - delta.Len()
	if overlap <= 0 {
		return dynamo.Vec2{}, dynamo.Vec2{}, false
	}
	n, ok := delta.Unit()
	if !ok {
		return dynamo.Vec2{}, dynamo.Vec2{}, false
	}
	total := a.Mass + b.Mass
	da = n.Scale(-overlap * b.Mass / total)
	db = n.Scale(overlap * a.Mass / total)
	return da, db, true
}

// ResolveOverlaps separates every overlapping pair. Shifts are computed
// from the positions at the start of the pass and applied together, so the
// result does not depend on particle order. It returns the number of pairs
// that were moved.
func ResolveOverlaps(ps []Particle) int {
	n := len(ps)
	var shifts []dynamo.Vec2
	moved := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			da, db, ok := Separation(&ps[i], &ps[j])
			if !ok {
				continue
			}
			if shifts == nil {
				shifts = make([]dynamo.Vec2, n)
			}
			shifts[i] = shifts[i].Add(da)
			shifts[j] = shifts[j].Add(db)
			moved++
		}
	}

	for i := range shifts {
		ps[i].Position = ps[i].Position.Add(shifts[i])
	}
	return moved
}
