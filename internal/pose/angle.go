package pose

import "math"

// Angle returns the non-reflex angle in degrees at vertex formed by the
// segments vertex→a and vertex→c. The result is always in [0, 180].
func Angle(a, vertex, c Point) float64 {
	rad := math.Atan2(c.Y-vertex.Y, c.X-vertex.X) - math.Atan2(a.Y-vertex.Y, a.X-vertex.X)
	deg := rad * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}
