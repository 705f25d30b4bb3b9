package dynamo

import "math"

// Heading returns the angle of the vector from -> to, measured from the
// positive x axis and normalized into [0, 2π). Coincident points give 0.
func Heading(from, to Vec2) float64 {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// Quadrant returns the quadrant (1-4) of an angle in [0, 2π) together with
// its reference angle in [0, π/2].
func Quadrant(theta float64) (quadrant int, ref float64) {
	switch {
	case theta < math.Pi/2:
		return 1, theta
	case theta < math.Pi:
		return 2, math.Pi - theta
	case theta < 3*math.Pi/2:
		return 3, theta - math.Pi
	default:
		return 4, 2*math.Pi - theta
	}
}

// quadrantSigns holds the (x, y) signs of each quadrant, indexed from 1.
var quadrantSigns = [5][2]float64{
	{1, 1},
	{1, 1},
	{-1, 1},
	{-1, -1},
	{1, -1},
}

// Components splits magnitude into Cartesian components along theta. The
// angle is reduced to its reference angle and reassembled with the sign of
// its quadrant, matching math.Cos and math.Sin of theta within rounding.
func Components(magnitude, theta float64) Vec2 {
	q, ref := Quadrant(theta)
	sign := quadrantSigns[q]
	sin, cos := math.Sincos(ref)
	return Vec2{
		X: sign[0] * magnitude * cos,
		Y: sign[1] * magnitude * sin,
	}
}
