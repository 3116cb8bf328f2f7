package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/geom"
)

// Orbit is the immutable path of one electron: a circle of the shell radius
// in the XY plane, carried into world space by a fixed rotation.
type Orbit struct {
	Level    int     // shell level n >= 1
	Index    int     // index within the shell
	Label    int     // display ordinal, 1-based across all orbits
	Radius   float64 // baseRadius * 2n
	Curve    geom.Ellipse
	Rotation geom.Euler
	Plane    geom.Plane // Rotation applied to the XY plane, cached at allocation
}

// PointAt returns the world position at phase t.
func (o *Orbit) PointAt(t float64) r3.Vec {
	x, y := o.Curve.Point(t)
	return o.Plane.Map(x, y)
}

// Normal returns the unit normal of the orbit plane.
func (o *Orbit) Normal() r3.Vec {
	return o.Plane.Normal()
}
