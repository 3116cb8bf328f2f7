// Package scene animates a computed layout: an ECS world holding one entity per
// nucleon and per electron, advanced by a fixed set of per-tick systems.
package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/systems"
)

// WobbleMode selects how nucleons jitter around their layout positions.
type WobbleMode uint8

const (
	WobbleOff WobbleMode = iota
	WobbleSine
	WobbleNoise
)

func (m WobbleMode) String() string {
	switch m {
	case WobbleOff:
		return "off"
	case WobbleSine:
		return "sine"
	case WobbleNoise:
		return "noise"
	default:
		return fmt.Sprintf("wobble(%d)", uint8(m))
	}
}

// ParseWobbleMode parses a config value. An empty string means off.
func ParseWobbleMode(s string) (WobbleMode, error) {
	switch s {
	case "", "off":
		return WobbleOff, nil
	case "sine":
		return WobbleSine, nil
	case "noise":
		return WobbleNoise, nil
	default:
		return WobbleOff, fmt.Errorf("unknown wobble mode %q", s)
	}
}

// Options configures a Scene.
type Options struct {
	Seed        int64
	Speed       float64 // electron phase per second
	LabelOffset r3.Vec
	PerfWindow  int

	Wobble    WobbleMode
	Amplitude float64
	Frequency float64
	Jitter    float64
}

// DefaultOptions returns the reference animation parameters.
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:        seed,
		Speed:       systems.DefaultElectronSpeed,
		LabelOffset: systems.DefaultLabelOffset,
		PerfWindow:  120,
		Wobble:      WobbleSine,
		Amplitude:   0.05,
		Frequency:   2,
		Jitter:      0.01,
	}
}

// OptionsFromConfig builds scene options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, seed int64) (Options, error) {
	mode, err := ParseWobbleMode(cfg.Wobble.Mode)
	if err != nil {
		return Options{}, fmt.Errorf("scene options: %w", err)
	}
	return Options{
		Seed:        seed,
		Speed:       cfg.Electron.Speed,
		LabelOffset: r3.Vec{Y: cfg.Electron.LabelOffset},
		PerfWindow:  cfg.Telemetry.PerfWindow,
		Wobble:      mode,
		Amplitude:   cfg.Wobble.Amplitude,
		Frequency:   cfg.Wobble.Frequency,
		Jitter:      cfg.Wobble.Jitter,
	}, nil
}
