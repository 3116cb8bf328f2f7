// Package components defines the data records produced by the layout systems
// and the ECS components the scene attaches to entities.
package components

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind labels a nucleon.
type Kind uint8

const (
	KindProton Kind = iota
	KindNeutron
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindProton:
		return "proton"
	case KindNeutron:
		return "neutron"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler (used by CSV and JSON output).
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "proton":
		*k = KindProton
	case "neutron":
		*k = KindNeutron
	default:
		return fmt.Errorf("unknown nucleon kind %q", b)
	}
	return nil
}

// Appearance is the fixed material of a particle.
type Appearance struct {
	Color     color.RGBA
	Roughness float64
	Metalness float64
}

// Nucleon is a classified, positioned nucleus particle.
// Nucleons are immutable once a layout is built.
type Nucleon struct {
	Position r3.Vec
	Kind     Kind
	Appearance
}

// Wobble drives the display-time jitter of a nucleon around its layout position.
type Wobble struct {
	Offset r3.Vec // fixed random direction, components in [-0.01, 0.01]
}

// Transform is the current display position of an entity.
type Transform struct {
	Position r3.Vec
}
