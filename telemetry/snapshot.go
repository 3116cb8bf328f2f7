package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/atom/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds one displayed atom: enough to recompute its layout from the
// inputs and seed, plus the nucleon and electron state at capture time.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	AtomicNumber float64 `json:"atomic_number"`
	AtomicMass   float64 `json:"atomic_mass"`
	Charge       float64 `json:"charge"`

	SphereRadius    float64 `json:"sphere_radius"`
	ContainerRadius float64 `json:"container_radius"`
	BaseRadius      float64 `json:"base_radius"`

	Tick int     `json:"tick"`
	Time float64 `json:"time"`

	Nucleons  []NucleonState  `json:"nucleons"`
	Electrons []ElectronState `json:"electrons"`
}

// NucleonState is one nucleon at capture time.
type NucleonState struct {
	Kind     components.Kind `json:"kind"`
	Position [3]float64      `json:"position"`
	Color    string          `json:"color"`
}

// ElectronState is one electron at capture time.
type ElectronState struct {
	Label    int        `json:"label"`
	Level    int        `json:"level"`
	Radius   float64    `json:"radius"`
	Rotation [3]float64 `json:"rotation"`
	Phase    float64    `json:"phase"`
	Position [3]float64 `json:"position"`
}

// SaveSnapshot writes snapshot into dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_z%g_a%g_c%g_%d.json",
		snapshot.AtomicNumber, snapshot.AtomicMass, snapshot.Charge, snapshot.Tick)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, snapshot.Version)
	}
	return &snapshot, nil
}
