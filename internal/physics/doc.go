// Package physics implements the gravitation kernel: the particle entity
// and the resolvers that act on an ensemble once per tick.
//
//   - [Particle]: point mass with implicit velocity (position history)
//   - [Builder]: assembles an ensemble and issues sequence IDs
//   - [AccumulateForces]: pairwise Newtonian gravity
//   - [ResolveOverlaps]: mass-weighted separation of interpenetrating bodies
//   - [ResolveCollisions]: impulse response encoded into the position history
//
// Resolvers never fail. Degenerate geometry (coincident centres) yields a
// zero effect instead of NaN.
//
// # Tick order
//
// The orchestrator in package sim calls the resolvers in a fixed order:
//
//	physics.ResolveOverlaps(ps)
//	physics.AccumulateForces(ps, g, eps, true)
//	physics.ResolveCollisions(ps, e, dt)
//	verlet.Integrate(ps, dt)
package physics
