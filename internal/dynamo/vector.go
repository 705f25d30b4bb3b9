package dynamo

import "math"

// Vec2 is a two-component vector in meters, newtons or kg·m/s depending on use.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3-D cross product v × o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Len2() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Unit returns v scaled to length one. ok is false for the zero vector,
// in which case the zero vector is returned.
func (v Vec2) Unit() (u Vec2, ok bool) {
	l := v.Len()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// IsValid reports whether both components are finite.
func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec2) float64 {
	return b.Sub(a).Len()
}
