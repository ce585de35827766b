// ABOUTME: Volume and coordinate conversions at the driver boundary
// ABOUTME: Logarithmic volume convention, world/driver axis swap and listener orientation
package driver

import "math"

// VolumeGain converts a Volume property value to a linear gain. Positive
// values are linear (capped at 1). Values <= 0 are an attenuation where -1 is
// full volume and 0 is silence, mapped over -10000..0 millibels.
func VolumeGain(v float64) float64 {
	if v > 0 {
		return math.Min(v, 1)
	}
	mb := (-1 - v) * 10000
	if mb <= -10000 {
		return 0
	}
	if mb > 0 {
		mb = 0
	}
	return math.Pow(10, mb/2000)
}

// Coords swaps a Z-up world coordinate into Y-up driver space
func Coords(x, y, z float64) [3]float64 {
	return [3]float64{x, z, y}
}

// Orientation converts yaw and pitch in degrees to front and up vectors in
// driver space. Driver space is the world with Y and Z swapped, so it is
// left-handed: right = up x front.
func Orientation(yaw, pitch float64) (front, up [3]float64) {
	y := yaw * math.Pi / 180
	p := pitch * math.Pi / 180

	// world space, Z up
	fx, fy, fz := math.Cos(y)*math.Cos(p), math.Sin(y)*math.Cos(p), math.Sin(p)
	ux, uy, uz := -math.Cos(y)*math.Sin(p), -math.Sin(y)*math.Sin(p), math.Cos(p)

	return Coords(fx, fy, fz), Coords(ux, uy, uz)
}

// Cross returns a x b
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Dot returns a . b
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Sub returns a - b
func Sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Length returns |a|
func Length(a [3]float64) float64 {
	return math.Sqrt(Dot(a, a))
}
