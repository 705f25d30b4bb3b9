// Package dynamo provides the core primitives shared by the gravitation
// kernel.
//
// The package defines the small value types and helpers every other
// package builds on:
//
//   - [Vec2]: two-component vector used for positions, forces and momenta
//   - [Heading]: direction from one point to another, normalized into [0, 2π)
//   - [Components]: quadrant-aware decomposition of a magnitude along a heading
//   - domain errors such as [ErrNonPositiveMass] and [SimulationError]
//
// # Example
//
//	theta := dynamo.Heading(earth, moon)
//	f := dynamo.Components(magnitude, theta)
//
// All functions are pure and safe for concurrent use.
package dynamo
