package physics

import "github.com/san-kum/gravsim/internal/dynamo"

// Gravity returns the gravitational force on pi due to pj, directed from
// pi toward pj with magnitude g·mi·mj / (d² + softening²). Coincident
// particles exert no force on each other.
func Gravity(g, softening float64, pi, pj *Particle) dynamo.Vec2 {
	d := dynamo.Distance(pi.Position, pj.Position)
	if d == 0 {
		return dynamo.Vec2{}
	}
	magnitude := g * pi.Mass * pj.Mass / (d*d + softening*softening)
	return dynamo.Components(magnitude, dynamo.Heading(pi.Position, pj.Position))
}

// AccumulateForces zeroes every force accumulator and adds the pairwise
// gravity of the ensemble. With collisions enabled, pairs in contact
// contribute no gravity.
func AccumulateForces(ps []Particle, g, softening float64, collisions bool) {
	for i := range ps {
		ps[i].Force = dynamo.Vec2{}
	}

	n := len(ps)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if collisions && InContact(&ps[i], &ps[j]) {
				continue
			}
			f := Gravity(g, softening, &ps[i], &ps[j])
			ps[i].Force = ps[i].Force.Add(f)
			ps[j].Force = ps[j].Force.Sub(f)
		}
	}
}
