// Package geom provides the vector and curve primitives shared by the layout systems.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis unit vectors.
var (
	UnitX = r3.Vec{X: 1}
	UnitY = r3.Vec{Y: 1}
	UnitZ = r3.Vec{Z: 1}
)

// Finite reports whether every component of v is a finite number.
func Finite(v r3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SafeUnit returns v scaled to unit length.
// ok is false for zero-length or non-finite vectors, in which case the zero vector is returned.
func SafeUnit(v r3.Vec) (u r3.Vec, ok bool) {
	n := r3.Norm(v)
	if n == 0 || !finite(n) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// ClampLength rescales v to length max when it is longer. Returns the (possibly) rescaled vector.
func ClampLength(v r3.Vec, max float64) r3.Vec {
	n := r3.Norm(v)
	if n <= max || n == 0 {
		return v
	}
	return r3.Scale(max/n, v)
}

// SphericalToCartesian converts (r, theta, phi) to a point. theta is the azimuth in the
// XY plane and phi the polar angle from +Z.
func SphericalToCartesian(r, theta, phi float64) r3.Vec {
	sinPhi := math.Sin(phi)
	return r3.Vec{
		X: r * sinPhi * math.Cos(theta),
		Y: r * sinPhi * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}
