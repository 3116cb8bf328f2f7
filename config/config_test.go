package config

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults failed: %v", err)
	}

	if cfg.Nucleus.SphereRadius != 0.5 {
		t.Errorf("sphere radius = %v, want 0.5", cfg.Nucleus.SphereRadius)
	}
	if cfg.Nucleus.Iterations != 100 {
		t.Errorf("iterations = %d, want 100", cfg.Nucleus.Iterations)
	}
	if cfg.Electron.Speed != 0.05 {
		t.Errorf("electron speed = %v, want 0.05", cfg.Electron.Speed)
	}
	if cfg.Atom.AtomicNumber != 11 || cfg.Atom.AtomicMass != 22.9898 {
		t.Errorf("default atom should be sodium, got %+v", cfg.Atom)
	}

	want := color.RGBA{R: 0xff, G: 0x40, B: 0x60, A: 0xff}
	if cfg.Derived.ProtonColor != want {
		t.Errorf("proton colour = %v, want %v", cfg.Derived.ProtonColor, want)
	}
	if cfg.Derived.NeutronColor != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("neutron colour = %v, want white", cfg.Derived.NeutronColor)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "nucleus:\n  iterations: 10\norbits:\n  distribution: spread\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Nucleus.Iterations != 10 {
		t.Errorf("iterations = %d, want 10", cfg.Nucleus.Iterations)
	}
	if cfg.Orbits.Distribution != "spread" {
		t.Errorf("distribution = %q, want spread", cfg.Orbits.Distribution)
	}
	// Untouched fields keep their defaults
	if cfg.Nucleus.SphereRadius != 0.5 {
		t.Errorf("sphere radius = %v, want default 0.5", cfg.Nucleus.SphereRadius)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad colour", "electron:\n  color: \"not-a-colour\"\n", "electron.color"},
		{"bad wobble", "wobble:\n  mode: shake\n", "wobble.mode"},
		{"bad distribution", "orbits:\n  distribution: fibonacci\n", "orbits.distribution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadNormalisesNumbers(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		radius float64
	}{
		{"nan radius", "nucleus:\n  sphere_radius: .nan\n", 0},
		{"inf radius", "nucleus:\n  sphere_radius: .inf\n", 0},
		{"negative inf radius", "nucleus:\n  sphere_radius: -.inf\n", 0},
		{"negative radius", "nucleus:\n  sphere_radius: -2\n", 0},
		{"valid radius", "nucleus:\n  sphere_radius: 0.75\n", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Nucleus.SphereRadius != tt.radius {
				t.Errorf("sphere radius = %v, want %v", cfg.Nucleus.SphereRadius, tt.radius)
			}
		})
	}
}

func TestLoadParticleLimits(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Nucleus.MaxNucleons != 5000 || cfg.Orbits.MaxElectrons != 5000 {
		t.Errorf("default limits = %d/%d, want 5000/5000", cfg.Nucleus.MaxNucleons, cfg.Orbits.MaxElectrons)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "nucleus:\n  max_nucleons: -4\norbits:\n  max_electrons: 0\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Nucleus.MaxNucleons != 0 || cfg.Orbits.MaxElectrons != 0 {
		t.Errorf("negative limits should mean no cap, got %d/%d", cfg.Nucleus.MaxNucleons, cfg.Orbits.MaxElectrons)
	}
}

// Every key in the embedded defaults must map onto a Config field.
func TestDefaultsHaveNoUnknownKeys(t *testing.T) {
	dec := yaml.NewDecoder(bytes.NewReader(defaultsYAML))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		t.Errorf("defaults.yaml: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Nucleus.Iterations = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config failed: %v", err)
	}
	if back.Nucleus.Iterations != 42 {
		t.Errorf("iterations = %d after round trip, want 42", back.Nucleus.Iterations)
	}
	if back.Derived.ElectronColor != cfg.Derived.ElectronColor {
		t.Error("derived colours should be recomputed identically")
	}
}

func TestParseColor(t *testing.T) {
	got, err := ParseColor("#141622")
	if err != nil {
		t.Fatal(err)
	}
	if got != (color.RGBA{R: 0x14, G: 0x16, B: 0x22, A: 0xff}) {
		t.Errorf("ParseColor = %v", got)
	}
	if _, err := ParseColor("white"); err == nil {
		t.Error("named colours are not supported and should fail")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
