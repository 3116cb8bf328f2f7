// Package config provides configuration loading and access for the atom layout engine.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all layout and presentation parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Atom       AtomConfig       `yaml:"atom"`
	Nucleus    NucleusConfig    `yaml:"nucleus"`
	Orbits     OrbitsConfig     `yaml:"orbits"`
	Electron   ElectronConfig   `yaml:"electron"`
	Appearance AppearanceConfig `yaml:"appearance"`
	Wobble     WobbleConfig     `yaml:"wobble"`
	Camera     CameraConfig     `yaml:"camera"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TargetFPS  int    `yaml:"target_fps"`
	Background string `yaml:"background"` // hex colour
}

// AtomConfig holds the default inputs shown at startup.
type AtomConfig struct {
	AtomicNumber float64 `yaml:"atomic_number"`
	AtomicMass   float64 `yaml:"atomic_mass"`
	Charge       float64 `yaml:"charge"`
}

// NucleusConfig holds sphere packing parameters.
type NucleusConfig struct {
	SphereRadius    float64 `yaml:"sphere_radius"`    // shared nucleon radius
	Iterations      int     `yaml:"iterations"`       // relaxation passes
	ContainerFactor float64 `yaml:"container_factor"` // container = cbrt(N) * radius * this
	StepSize        float64 `yaml:"step_size"`        // force integration step
	Centering       float64 `yaml:"centering"`        // pull toward the origin
	GridThreshold   int     `yaml:"grid_threshold"`   // spatial grid from this count (0 = off)
	MaxNucleons     int     `yaml:"max_nucleons"`     // larger nuclei are capped (0 = no cap)
}

// OrbitsConfig holds shell allocation parameters.
type OrbitsConfig struct {
	BaseFactor   float64 `yaml:"base_factor"`   // base radius = sphere_radius * cbrt(N) * this
	Distribution string  `yaml:"distribution"`  // "random" or "spread"
	MaxElectrons int     `yaml:"max_electrons"` // more electrons are capped (0 = no cap)
}

// ElectronConfig holds electron motion and display parameters.
type ElectronConfig struct {
	Speed       float64 `yaml:"speed"`        // phase per second
	Radius      float64 `yaml:"radius"`       // display sphere radius
	LabelOffset float64 `yaml:"label_offset"` // label height above the electron
	LabelSize   float64 `yaml:"label_size"`
	Color       string  `yaml:"color"`
}

// AppearanceConfig holds nucleon materials.
type AppearanceConfig struct {
	ProtonColor  string  `yaml:"proton_color"`
	NeutronColor string  `yaml:"neutron_color"`
	Roughness    float64 `yaml:"roughness"`
	Metalness    float64 `yaml:"metalness"`
}

// WobbleConfig holds the display-time nucleon jitter.
type WobbleConfig struct {
	Mode      string  `yaml:"mode"`      // "sine", "noise" or "off"
	Amplitude float64 `yaml:"amplitude"` // offset scale
	Frequency float64 `yaml:"frequency"` // radians per second (sine) or noise time scale
	Jitter    float64 `yaml:"jitter"`    // per-nucleon offset components in [-jitter, jitter]
}

// CameraConfig holds the initial viewpoint.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	FOV         float64 `yaml:"fov"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int     `yaml:"perf_window"` // ticks averaged by the perf collector
	StatsEvery float64 `yaml:"stats_every"` // seconds between headless stats logs
	HeadlessDT float64 `yaml:"headless_dt"` // fixed tick in headless mode
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Background    color.RGBA
	ProtonColor   color.RGBA
	NeutronColor  color.RGBA
	ElectronColor color.RGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived parses colours and validates enumerations.
func (c *Config) computeDerived() error {
	colors := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"screen.background", c.Screen.Background, &c.Derived.Background},
		{"appearance.proton_color", c.Appearance.ProtonColor, &c.Derived.ProtonColor},
		{"appearance.neutron_color", c.Appearance.NeutronColor, &c.Derived.NeutronColor},
		{"electron.color", c.Electron.Color, &c.Derived.ElectronColor},
	}
	for _, col := range colors {
		rgba, err := ParseColor(col.hex)
		if err != nil {
			return fmt.Errorf("%s: %w", col.name, err)
		}
		*col.dst = rgba
	}

	switch c.Wobble.Mode {
	case "", "off", "sine", "noise":
	default:
		return fmt.Errorf("wobble.mode: unknown mode %q", c.Wobble.Mode)
	}
	switch c.Orbits.Distribution {
	case "", "random", "spread":
	default:
		return fmt.Errorf("orbits.distribution: unknown distribution %q", c.Orbits.Distribution)
	}

	r := c.Nucleus.SphereRadius
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		c.Nucleus.SphereRadius = 0
	}
	c.Nucleus.MaxNucleons = max(c.Nucleus.MaxNucleons, 0)
	c.Orbits.MaxElectrons = max(c.Orbits.MaxElectrons, 0)
	return nil
}

// ParseColor parses a "#rrggbb" (or "#rgb") colour into an opaque RGBA.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
