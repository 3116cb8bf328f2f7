package telemetry

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/atom/components"
)

// NucleonRecord is one row of nucleons.csv.
type NucleonRecord struct {
	Layout int             `csv:"layout"`
	Index  int             `csv:"index"`
	Kind   components.Kind `csv:"kind"`
	X      float64         `csv:"x"`
	Y      float64         `csv:"y"`
	Z      float64         `csv:"z"`
	Color  string          `csv:"color"`
}

// OrbitRecord is one row of orbits.csv.
type OrbitRecord struct {
	Layout  int     `csv:"layout"`
	Label   int     `csv:"label"`
	Level   int     `csv:"level"`
	Index   int     `csv:"index"`
	Radius  float64 `csv:"radius"`
	RotX    float64 `csv:"rot_x"`
	RotY    float64 `csv:"rot_y"`
	RotZ    float64 `csv:"rot_z"`
	NormalX float64 `csv:"normal_x"`
	NormalY float64 `csv:"normal_y"`
	NormalZ float64 `csv:"normal_z"`
}

// LayoutRecord is one row of layouts.csv: a computed layout's inputs, sizes,
// stage timings and packing quality.
type LayoutRecord struct {
	Layout int   `csv:"layout"`
	Seed   int64 `csv:"seed"`

	AtomicNumber float64 `csv:"atomic_number"`
	AtomicMass   float64 `csv:"atomic_mass"`
	Charge       float64 `csv:"charge"`
	Protons      int     `csv:"protons"`
	Neutrons     int     `csv:"neutrons"`
	Electrons    int     `csv:"electrons"`
	Shells       int     `csv:"shells"`

	ContainerRadius float64 `csv:"container_radius"`
	BaseRadius      float64 `csv:"base_radius"`

	PackUS     int64 `csv:"pack_us"`
	ClassifyUS int64 `csv:"classify_us"`
	AllocateUS int64 `csv:"allocate_us"`

	RadialMean      float64 `csv:"radial_mean"`
	RadialMax       float64 `csv:"radial_max"`
	MinPairDistance float64 `csv:"min_pair_distance"`
	Overlaps        int     `csv:"overlaps"`
	MaxOverlapDepth float64 `csv:"max_overlap_depth"`
	Contained       bool    `csv:"contained"`
}

// WithPacking copies the packing stats into r.
func (r LayoutRecord) WithPacking(s PackingStats) LayoutRecord {
	r.RadialMean = s.RadialMean
	r.RadialMax = s.RadialMax
	r.MinPairDistance = s.MinPairDistance
	r.Overlaps = s.Overlaps
	r.MaxOverlapDepth = s.MaxOverlapDepth
	r.Contained = s.Contained
	return r
}

// NucleonRecords flattens nucleons for CSV output.
func NucleonRecords(layout int, nucleons []components.Nucleon) []NucleonRecord {
	records := make([]NucleonRecord, len(nucleons))
	for i, n := range nucleons {
		records[i] = NucleonRecord{
			Layout: layout,
			Index:  i,
			Kind:   n.Kind,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Z:      n.Position.Z,
			Color:  Hex(n.Color),
		}
	}
	return records
}

// OrbitRecords flattens orbits for CSV output.
func OrbitRecords(layout int, orbits []components.Orbit) []OrbitRecord {
	records := make([]OrbitRecord, len(orbits))
	for i, o := range orbits {
		normal := o.Normal()
		records[i] = OrbitRecord{
			Layout:  layout,
			Label:   o.Label,
			Level:   o.Level,
			Index:   o.Index,
			Radius:  o.Radius,
			RotX:    o.Rotation.X,
			RotY:    o.Rotation.Y,
			RotZ:    o.Rotation.Z,
			NormalX: normal.X,
			NormalY: normal.Y,
			NormalZ: normal.Z,
		}
	}
	return records
}

// Hex formats c as #rrggbb. Alpha is dropped.
func Hex(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
