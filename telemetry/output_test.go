package telemetry

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// A nil manager accepts every call.
	if err := om.WriteLayout(LayoutRecord{}, nil, nil); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	nucleons := []components.Nucleon{
		{Position: r3.Vec{X: 1}, Kind: components.KindProton, Appearance: components.Appearance{Color: color.RGBA{R: 0xff, G: 0x40, B: 0x60, A: 0xff}}},
		{Position: r3.Vec{Y: 1}, Kind: components.KindNeutron, Appearance: components.Appearance{Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}},
	}
	for i := range 2 {
		rec := LayoutRecord{Layout: i, Protons: 1, Neutrons: 1}
		if err := om.WriteLayout(rec, NucleonRecords(i, nucleons), nil); err != nil {
			t.Fatalf("WriteLayout: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "nucleons.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "layout,index,kind") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "proton") || !strings.Contains(lines[1], "#ff4060") {
		t.Errorf("unexpected first row %q", lines[1])
	}

	layouts, err := os.ReadFile(filepath.Join(dir, "layouts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(strings.TrimSpace(string(layouts)), "\n"); n != 2 {
		t.Errorf("expected 2 layout rows after the header, got %d", n)
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestOrbitRecords(t *testing.T) {
	orbits := []components.Orbit{{Level: 2, Index: 3, Label: 6, Radius: 4}}
	orbits[0].Plane.U = r3.Vec{X: 1}
	orbits[0].Plane.V = r3.Vec{Y: 1}

	recs := OrbitRecords(7, orbits)
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	r := recs[0]
	if r.Layout != 7 || r.Label != 6 || r.Level != 2 || r.Radius != 4 {
		t.Errorf("unexpected record %+v", r)
	}
	if r.NormalZ != 1 {
		t.Errorf("XY plane normal should be +Z, got (%v, %v, %v)", r.NormalX, r.NormalY, r.NormalZ)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{R: 0x00, G: 0xd7, B: 0xf1, A: 0xff}); got != "#00d7f1" {
		t.Errorf("Hex = %q, want #00d7f1", got)
	}
}
