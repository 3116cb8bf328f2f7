package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/telemetry"
)

// recordLayout measures a new layout and writes it to the output directory.
func (g *Game) recordLayout(l *layout.Layout) {
	positions := make([]r3.Vec, len(l.Nucleons))
	for i, n := range l.Nucleons {
		positions[i] = n.Position
	}
	packing := telemetry.ComputePackingStats(positions, l.SphereRadius, l.ContainerRadius)

	if g.logStats {
		hits, misses := g.engine.CacheStats()
		slog.Info("layout",
			"protons", l.Counts.Protons,
			"neutrons", l.Counts.Neutrons,
			"electrons", l.Counts.Electrons,
			"shells", len(shellFills(l)),
			"pack_us", l.Timing.Pack.Microseconds(),
			"cache_hits", hits,
			"cache_misses", misses,
			"packing", packing,
		)
	}

	if g.outputManager == nil {
		return
	}
	rec := telemetry.LayoutRecord{
		Layout:          g.layouts,
		Seed:            g.seed,
		AtomicNumber:    l.Inputs.AtomicNumber,
		AtomicMass:      l.Inputs.AtomicMass,
		Charge:          l.Inputs.Charge,
		Protons:         l.Counts.Protons,
		Neutrons:        l.Counts.Neutrons,
		Electrons:       l.Counts.Electrons,
		Shells:          len(shellFills(l)),
		ContainerRadius: l.ContainerRadius,
		BaseRadius:      l.BaseRadius,
		PackUS:          l.Timing.Pack.Microseconds(),
		ClassifyUS:      l.Timing.Classify.Microseconds(),
		AllocateUS:      l.Timing.Allocate.Microseconds(),
	}.WithPacking(packing)

	err := g.outputManager.WriteLayout(rec,
		telemetry.NucleonRecords(g.layouts, l.Nucleons),
		telemetry.OrbitRecords(g.layouts, l.Orbits),
	)
	if err != nil {
		slog.Error("failed to write layout", "error", err)
	}
}

// flushTelemetry logs and writes perf stats every telemetry.stats_every seconds.
func (g *Game) flushTelemetry(dt float64) {
	every := g.cfg.Telemetry.StatsEvery
	if every <= 0 {
		return
	}
	g.sinceStats += dt
	if g.sinceStats < every {
		return
	}
	g.sinceStats = 0

	perfStats := g.scene.Perf().Stats()
	if g.logStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// shellFills counts electrons per shell, innermost first.
func shellFills(l *layout.Layout) []int {
	var fills []int
	for _, o := range l.Orbits {
		for len(fills) < o.Level {
			fills = append(fills, 0)
		}
		fills[o.Level-1]++
	}
	return fills
}

// SaveSnapshot writes the displayed atom to the snapshot directory.
func (g *Game) SaveSnapshot() (string, error) {
	l := g.scene.Layout()
	if l == nil || g.frame == nil {
		return "", nil
	}

	snap := &telemetry.Snapshot{
		Version:         telemetry.SnapshotVersion,
		Seed:            g.seed,
		AtomicNumber:    l.Inputs.AtomicNumber,
		AtomicMass:      l.Inputs.AtomicMass,
		Charge:          l.Inputs.Charge,
		SphereRadius:    l.SphereRadius,
		ContainerRadius: l.ContainerRadius,
		BaseRadius:      l.BaseRadius,
		Tick:            g.tick,
		Time:            g.frame.Time,
	}
	for _, n := range g.frame.Nucleons {
		snap.Nucleons = append(snap.Nucleons, telemetry.NucleonState{
			Kind:     n.Kind,
			Position: [3]float64{n.Position.X, n.Position.Y, n.Position.Z},
			Color:    telemetry.Hex(n.Color),
		})
	}
	for _, e := range g.frame.Electrons {
		snap.Electrons = append(snap.Electrons, telemetry.ElectronState{
			Label:    e.Label,
			Level:    e.Orbit.Level,
			Radius:   e.Orbit.Radius,
			Rotation: [3]float64{e.Orbit.Rotation.X, e.Orbit.Rotation.Y, e.Orbit.Rotation.Z},
			Phase:    e.Phase,
			Position: [3]float64{e.Position.X, e.Position.Y, e.Position.Z},
		})
	}

	dir := g.snapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
	return path, nil
}
