package components

import "gonum.org/v1/gonum/spatial/r3"

// ElectronState is the mutable per-electron animation state.
type ElectronState struct {
	Orbit *Orbit
	Phase float64 // position along the orbit in [0, 1)
	Speed float64 // phase units per second
}

// Billboard holds the resolved label placement for an electron.
type Billboard struct {
	Target        r3.Vec // point the label faces (the viewpoint)
	LabelPosition r3.Vec
	Facing        r3.Vec // unit direction from label to target, zero when coincident
}

// Label is the display ordinal of an electron.
type Label struct {
	N int
}
