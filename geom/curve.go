package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ellipse is a planar curve in the XY plane swept from StartAngle to EndAngle.
type Ellipse struct {
	CenterX, CenterY float64
	RadiusX, RadiusY float64
	StartAngle       float64
	EndAngle         float64
}

// Circle returns a full-sweep ellipse of equal semi-axes centred on the origin.
func Circle(radius float64) Ellipse {
	return Ellipse{
		RadiusX:  radius,
		RadiusY:  radius,
		EndAngle: 2 * math.Pi,
	}
}

// Point returns the planar point at fraction t of the sweep (t in [0,1]).
func (e Ellipse) Point(t float64) (x, y float64) {
	angle := e.StartAngle + t*(e.EndAngle-e.StartAngle)
	return e.CenterX + e.RadiusX*math.Cos(angle), e.CenterY + e.RadiusY*math.Sin(angle)
}

// Point3 returns Point(t) lifted into the z=0 plane.
func (e Ellipse) Point3(t float64) r3.Vec {
	x, y := e.Point(t)
	return r3.Vec{X: x, Y: y}
}

// Euler holds intrinsic rotation angles in radians, applied in XYZ order:
// v' = Rx(X) * Ry(Y) * Rz(Z) * v.
type Euler struct {
	X, Y, Z float64
}

// Apply rotates v.
func (e Euler) Apply(v r3.Vec) r3.Vec {
	if e.Z != 0 {
		v = r3.NewRotation(e.Z, UnitZ).Rotate(v)
	}
	if e.Y != 0 {
		v = r3.NewRotation(e.Y, UnitY).Rotate(v)
	}
	if e.X != 0 {
		v = r3.NewRotation(e.X, UnitX).Rotate(v)
	}
	return v
}

// Basis returns the rotated unit X and Y axes, i.e. the plane a planar curve lands in after Apply.
func (e Euler) Basis() (u, v r3.Vec) {
	return e.Apply(UnitX), e.Apply(UnitY)
}

// Plane is an orthonormal basis spanning a rotated curve plane.
type Plane struct {
	U, V r3.Vec
}

// PlaneOf returns the plane the XY plane maps to under e.
func PlaneOf(e Euler) Plane {
	u, v := e.Basis()
	return Plane{U: u, V: v}
}

// Map lifts a planar (x, y) point into world space.
func (p Plane) Map(x, y float64) r3.Vec {
	return r3.Add(r3.Scale(x, p.U), r3.Scale(y, p.V))
}

// Normal returns the unit normal of the plane.
func (p Plane) Normal() r3.Vec {
	n, _ := SafeUnit(r3.Cross(p.U, p.V))
	return n
}
