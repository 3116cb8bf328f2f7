package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/geom"
)

// DefaultElectronSpeed is the phase advance per second shared by every electron.
// Outer shells are not slower.
const DefaultElectronSpeed = 0.05

// DefaultLabelOffset is the height of an electron's label above the electron.
var DefaultLabelOffset = r3.Vec{Y: 0.7}

// Resolved is an electron's world placement for one tick.
type Resolved struct {
	Position     r3.Vec
	FacingTarget r3.Vec
	Billboard    components.Billboard
}

// Driver resolves electron states against their orbits.
type Driver struct {
	LabelOffset r3.Vec
}

// NewDriver returns a driver with the default label offset.
func NewDriver() Driver {
	return Driver{LabelOffset: DefaultLabelOffset}
}

// WrapPhase maps t into [0, 1). Non-finite phases map to 0.
func WrapPhase(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	t = math.Mod(t, 1)
	if t < 0 {
		t++
	}
	if t >= 1 {
		t = 0
	}
	return t
}

// Advance moves state forward by dt seconds and resolves it against the viewpoint.
// The label orientation is recomputed from scratch every call, with no smoothing.
// A non-finite step leaves the phase where it was.
func (d Driver) Advance(state components.ElectronState, dt float64, viewpoint r3.Vec) (components.ElectronState, Resolved) {
	step := state.Speed * dt
	if math.IsNaN(step) || math.IsInf(step, 0) {
		step = 0
	}
	state.Phase = WrapPhase(state.Phase + step)
	return state, d.Resolve(state, viewpoint)
}

// Resolve places state in world space without advancing it.
func (d Driver) Resolve(state components.ElectronState, viewpoint r3.Vec) Resolved {
	var pos r3.Vec
	if state.Orbit != nil {
		pos = state.Orbit.PointAt(state.Phase)
	}

	label := r3.Add(pos, d.LabelOffset)
	facing, _ := geom.SafeUnit(r3.Sub(viewpoint, label))

	return Resolved{
		Position:     pos,
		FacingTarget: viewpoint,
		Billboard: components.Billboard{
			Target:        viewpoint,
			LabelPosition: label,
			Facing:        facing,
		},
	}
}
