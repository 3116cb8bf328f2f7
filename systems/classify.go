package systems

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
)

// Palette maps each nucleon kind to its appearance.
type Palette struct {
	Proton  components.Appearance
	Neutron components.Appearance
}

// DefaultPalette is the warm-accent proton / white neutron scheme.
func DefaultPalette() Palette {
	return Palette{
		Proton: components.Appearance{
			Color:     color.RGBA{R: 0xff, G: 0x40, B: 0x60, A: 0xff},
			Roughness: 0.1,
			Metalness: 0.1,
		},
		Neutron: components.Appearance{
			Color:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
			Roughness: 0.1,
			Metalness: 0.1,
		},
	}
}

// Appearance returns the appearance for kind.
func (p Palette) Appearance(kind components.Kind) components.Appearance {
	if kind == components.KindNeutron {
		return p.Neutron
	}
	return p.Proton
}

// Classify labels positions alternately proton, neutron, proton, ... starting
// with a proton at index 0, independent of where the positions are.
// The alternation is carried as fold state, so calls share nothing.
func Classify(positions []r3.Vec, palette Palette) []components.Nucleon {
	out := make([]components.Nucleon, 0, len(positions))
	kind := components.KindProton
	for _, pos := range positions {
		out = append(out, components.Nucleon{
			Position:   pos,
			Kind:       kind,
			Appearance: palette.Appearance(kind),
		})
		kind = next(kind)
	}
	return out
}

func next(k components.Kind) components.Kind {
	if k == components.KindProton {
		return components.KindNeutron
	}
	return components.KindProton
}
