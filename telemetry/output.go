package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/atom/config"
)

// csvFile is an output file whose header is written with the first batch of rows.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func writeRows[T any](cf *csvFile, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if !cf.headerWritten {
		if err := gocsv.Marshal(rows, cf.f); err != nil {
			return fmt.Errorf("writing %s: %w", cf.name, err)
		}
		cf.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, cf.f); err != nil {
		return fmt.Errorf("writing %s: %w", cf.name, err)
	}
	return nil
}

// OutputManager writes layout and performance CSVs into one directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir      string
	nucleons *csvFile
	orbits   *csvFile
	layouts  *csvFile
	perf     *csvFile
}

// NewOutputManager creates dir and the CSV files in it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	targets := []struct {
		name string
		dst  **csvFile
	}{
		{"nucleons.csv", &om.nucleons},
		{"orbits.csv", &om.orbits},
		{"layouts.csv", &om.layouts},
		{"perf.csv", &om.perf},
	}
	for _, t := range targets {
		f, err := os.Create(filepath.Join(dir, t.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", t.name, err)
		}
		*t.dst = &csvFile{name: t.name, f: f}
	}
	return om, nil
}

// WriteConfig saves the configuration in effect as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteLayout appends one layout with its nucleons and orbits.
func (om *OutputManager) WriteLayout(rec LayoutRecord, nucleons []NucleonRecord, orbits []OrbitRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.layouts, []LayoutRecord{rec}); err != nil {
		return err
	}
	if err := writeRows(om.nucleons, nucleons); err != nil {
		return err
	}
	return writeRows(om.orbits, orbits)
}

// WritePerf appends a performance stats row stamped with tick.
func (om *OutputManager) WritePerf(stats PerfStats, tick int) error {
	if om == nil {
		return nil
	}
	return writeRows(om.perf, []PerfStatsCSV{stats.ToCSV(tick)})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, cf := range []*csvFile{om.nucleons, om.orbits, om.layouts, om.perf} {
		if cf == nil {
			continue
		}
		if err := cf.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", cf.name, err))
		}
	}
	return errors.Join(errs...)
}
