package main

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/telemetry"
)

// Atoms packed by every evaluation, from a single sphere up to a heavy nucleus.
var benchmarkAtoms = []layout.Inputs{
	{AtomicNumber: 1, AtomicMass: 1.008},
	{AtomicNumber: 6, AtomicMass: 12.011},
	{AtomicNumber: 11, AtomicMass: 22.9898},
	{AtomicNumber: 26, AtomicMass: 55.845},
	{AtomicNumber: 79, AtomicMass: 196.967},
}

// Fitness weights.
const (
	weightOverlap   = 10.0  // per diameter of overlap depth
	weightSpread    = 1.0   // per unit of normalised radial extent
	weightEscape    = 10.0  // per layout with a centre outside the container
	weightPackMilli = 0.002 // per millisecond of packing
)

// runResult holds the measurements of one packed atom.
type runResult struct {
	stats  telemetry.PackingStats
	radius float64
	packMS float64
}

// FitnessEvaluator packs the benchmark atoms and scores the result.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config

	mu        sync.Mutex
	lastStats telemetry.PackingStats // worst overlap of the most recent evaluation
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastStats returns the worst packing stats from the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.PackingStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	results := make([][]runResult, len(fe.seeds))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := runSeed(ctx, cfg, seed)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	var total float64
	var count int
	var worst telemetry.PackingStats
	for _, rs := range results {
		for _, r := range rs {
			total += computeFitness(r)
			count++
			if r.stats.MaxOverlapDepth >= worst.MaxOverlapDepth {
				worst = r.stats
			}
		}
	}

	fe.mu.Lock()
	fe.lastStats = worst
	fe.mu.Unlock()

	return total / float64(count)
}

// runSeed packs every benchmark atom with one seed.
func runSeed(ctx context.Context, cfg *config.Config, seed int64) ([]runResult, error) {
	opts, err := layout.OptionsFromConfig(cfg, seed)
	if err != nil {
		return nil, err
	}
	engine := layout.NewEngine(opts)

	results := make([]runResult, 0, len(benchmarkAtoms))
	for _, in := range benchmarkAtoms {
		l, err := engine.Compute(ctx, in)
		if err != nil {
			return nil, err
		}
		positions := make([]r3.Vec, len(l.Nucleons))
		for i, n := range l.Nucleons {
			positions[i] = n.Position
		}
		results = append(results, runResult{
			stats:  telemetry.ComputePackingStats(positions, l.SphereRadius, l.ContainerRadius),
			radius: l.SphereRadius,
			packMS: float64(l.Timing.Pack.Microseconds()) / 1000,
		})
	}
	return results, nil
}

// computeFitness scores one packed atom. Overlap is measured in diameters and
// spread as the outermost centre relative to radius * cbrt(N), the extent of
// an ideal close packing up to a constant.
func computeFitness(r runResult) float64 {
	if r.stats.Count == 0 || r.radius <= 0 {
		return 0
	}
	diameter := 2 * r.radius
	overlap := (r.stats.MaxOverlapDepth + r.stats.MeanOverlap) / diameter
	spread := r.stats.RadialMax / (r.radius * math.Cbrt(float64(r.stats.Count)))

	f := weightOverlap*overlap + weightSpread*spread + weightPackMilli*r.packMS
	if !r.stats.Contained {
		f += weightEscape
	}
	return f
}

// copyConfig returns a copy of the base config. Config holds no pointers, so
// a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
