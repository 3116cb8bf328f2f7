package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/systems"
)

// Options configures an Engine.
type Options struct {
	Seed int64

	SphereRadius    float64
	Iterations      int
	ContainerFactor float64
	StepSize        float64
	Centering       float64
	GridThreshold   int

	OrbitBaseFactor float64
	Distribution    systems.Distribution

	// Practical limits on the derived counts; 0 disables a limit.
	MaxNucleons  int
	MaxElectrons int

	Palette systems.Palette
}

// Default particle limits. Packing is quadratic below the grid threshold and
// the viewer draws every particle, so counts far past the heaviest elements
// only stall the caller.
const (
	DefaultMaxNucleons  = 5000
	DefaultMaxElectrons = 5000
)

// DefaultOptions returns the reference parameters with the given seed.
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:            seed,
		SphereRadius:    0.5,
		Iterations:      systems.DefaultIterations,
		ContainerFactor: systems.DefaultContainerFactor,
		StepSize:        systems.DefaultStepSize,
		Centering:       systems.DefaultCentering,
		GridThreshold:   systems.DefaultGridThreshold,
		OrbitBaseFactor: 3,
		Distribution:    systems.DistributionRandom,
		MaxNucleons:     DefaultMaxNucleons,
		MaxElectrons:    DefaultMaxElectrons,
		Palette:         systems.DefaultPalette(),
	}
}

// OptionsFromConfig builds engine options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, seed int64) (Options, error) {
	dist, err := systems.ParseDistribution(cfg.Orbits.Distribution)
	if err != nil {
		return Options{}, fmt.Errorf("orbit options: %w", err)
	}

	return Options{
		Seed:            seed,
		SphereRadius:    cfg.Nucleus.SphereRadius,
		Iterations:      cfg.Nucleus.Iterations,
		ContainerFactor: cfg.Nucleus.ContainerFactor,
		StepSize:        cfg.Nucleus.StepSize,
		Centering:       cfg.Nucleus.Centering,
		GridThreshold:   cfg.Nucleus.GridThreshold,
		OrbitBaseFactor: cfg.Orbits.BaseFactor,
		Distribution:    dist,
		MaxNucleons:     cfg.Nucleus.MaxNucleons,
		MaxElectrons:    cfg.Orbits.MaxElectrons,
		Palette: systems.Palette{
			Proton: components.Appearance{
				Color:     cfg.Derived.ProtonColor,
				Roughness: cfg.Appearance.Roughness,
				Metalness: cfg.Appearance.Metalness,
			},
			Neutron: components.Appearance{
				Color:     cfg.Derived.NeutronColor,
				Roughness: cfg.Appearance.Roughness,
				Metalness: cfg.Appearance.Metalness,
			},
		},
	}, nil
}

// Timing records how long each stage of a layout took. Cached stages report
// the time of the computation that filled the cache.
type Timing struct {
	Pack     time.Duration
	Classify time.Duration
	Allocate time.Duration
}

// Layout is an immutable snapshot of one computed atom. Slices are shared with
// the engine cache and other layouts of the same key; consumers must not modify them.
type Layout struct {
	Inputs Inputs
	Counts Counts

	SphereRadius    float64
	ContainerRadius float64
	BaseRadius      float64

	Nucleons []components.Nucleon
	Orbits   []components.Orbit

	Timing Timing
}

type nucleusResult struct {
	nucleons  []components.Nucleon
	container float64
	pack      time.Duration
	classify  time.Duration
}

type orbitResult struct {
	orbits   []components.Orbit
	base     float64
	allocate time.Duration
}

// Engine computes layouts and memoizes them: the nucleus by (protons, neutrons)
// and the orbits by (electrons, protons, neutrons). It is safe for concurrent use;
// concurrent misses on one key share a single computation.
type Engine struct {
	opts Options

	inflight singleflight.Group

	mu     sync.Mutex
	nuclei map[NucleusKey]*nucleusResult
	orbits map[OrbitKey]*orbitResult
	hits   int
	misses int
}

// NewEngine creates an engine with an empty cache.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:   opts,
		nuclei: make(map[NucleusKey]*nucleusResult),
		orbits: make(map[OrbitKey]*orbitResult),
	}
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Compute returns the layout for in. The nucleus and the orbits are computed
// concurrently on a cache miss. The only error is ctx's.
func (e *Engine) Compute(ctx context.Context, in Inputs) (*Layout, error) {
	counts := e.limit(Derive(in))

	var (
		nuc *nucleusResult
		orb *orbitResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := memoized(gctx, e, e.nuclei, counts.NucleusKey(), func(ctx context.Context) (*nucleusResult, error) {
			return e.packNucleus(ctx, counts)
		})
		nuc = r
		return err
	})
	g.Go(func() error {
		r, err := memoized(gctx, e, e.orbits, counts.OrbitKey(), func(context.Context) (*orbitResult, error) {
			return e.allocateOrbits(counts), nil
		})
		orb = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("computing layout for %+v: %w", counts, err)
	}

	return &Layout{
		Inputs:          in,
		Counts:          counts,
		SphereRadius:    e.opts.SphereRadius,
		ContainerRadius: nuc.container,
		BaseRadius:      orb.base,
		Nucleons:        nuc.nucleons,
		Orbits:          orb.orbits,
		Timing: Timing{
			Pack:     nuc.pack,
			Classify: nuc.classify,
			Allocate: orb.allocate,
		},
	}, nil
}

// CacheStats returns the number of cache hits and misses across both caches.
// A caller that received a computation shared with another caller counts as a hit.
func (e *Engine) CacheStats() (hits, misses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.misses
}

// limit caps counts at the engine's particle limits. Protons are kept before
// neutrons so the element stays the same.
func (e *Engine) limit(c Counts) Counts {
	capped := c
	if n := e.opts.MaxNucleons; n > 0 && c.Nucleons() > n {
		capped.Protons = min(c.Protons, n)
		capped.Neutrons = n - capped.Protons
	}
	if n := e.opts.MaxElectrons; n > 0 && c.Electrons > n {
		capped.Electrons = n
	}
	if capped != c {
		slog.Warn("particle counts capped",
			"protons", c.Protons,
			"neutrons", c.Neutrons,
			"electrons", c.Electrons,
			"max_nucleons", e.opts.MaxNucleons,
			"max_electrons", e.opts.MaxElectrons,
		)
	}
	return capped
}

// memoized returns cache[key], computing it on a miss. Callers missing on the
// same key at once wait for one computation. When that computation was
// cancelled by its own caller, the others retry with their contexts.
func memoized[K comparable, V any](ctx context.Context, e *Engine, cache map[K]V, key K, compute func(context.Context) (V, error)) (V, error) {
	var zero V
	name := fmt.Sprintf("%T%v", key, key)

	for {
		if v, ok := lookup(e, cache, key); ok {
			return v, nil
		}

		ran := false
		ch := e.inflight.DoChan(name, func() (any, error) {
			e.mu.Lock()
			v, ok := cache[key]
			e.mu.Unlock()
			if ok {
				return v, nil
			}

			ran = true
			v, err := compute(ctx)
			if err != nil {
				return nil, err
			}
			e.mu.Lock()
			cache[key] = v
			e.misses++
			e.mu.Unlock()
			return v, nil
		})

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				if !ran {
					e.mu.Lock()
					e.hits++
					e.mu.Unlock()
				}
				return res.Val.(V), nil
			}
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			if !errors.Is(res.Err, context.Canceled) && !errors.Is(res.Err, context.DeadlineExceeded) {
				return zero, res.Err
			}
		}
	}
}

// lookup returns cache[key], counting a hit when present. Misses are counted
// by the computation that fills the entry.
func lookup[K comparable, V any](e *Engine, cache map[K]V, key K) (V, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := cache[key]
	if ok {
		e.hits++
	}
	return v, ok
}

func (e *Engine) packNucleus(ctx context.Context, counts Counts) (*nucleusResult, error) {
	packer := &systems.Packer{
		Iterations:      e.opts.Iterations,
		ContainerFactor: e.opts.ContainerFactor,
		StepSize:        e.opts.StepSize,
		Centering:       e.opts.Centering,
		GridThreshold:   e.opts.GridThreshold,
		Rand:            rand.New(rand.NewSource(e.opts.Seed)),
	}

	count := counts.Nucleons()
	start := time.Now()
	positions, err := packer.Pack(ctx, count, e.opts.SphereRadius)
	if err != nil {
		return nil, err
	}
	packed := time.Now()
	nucleons := systems.Classify(positions, e.opts.Palette)

	r := &nucleusResult{
		nucleons:  nucleons,
		container: packer.ContainerRadius(count, e.opts.SphereRadius),
		pack:      packed.Sub(start),
		classify:  time.Since(packed),
	}

	slog.Debug("nucleus packed",
		"protons", counts.Protons,
		"neutrons", counts.Neutrons,
		"container_radius", r.container,
		"pack", r.pack,
	)
	return r, nil
}

func (e *Engine) allocateOrbits(counts Counts) *orbitResult {
	base := BaseRadius(counts.Nucleons(), e.opts.SphereRadius, e.opts.OrbitBaseFactor)
	// Offset the seed so orbit angles do not replay the packer's first draws.
	rng := rand.New(rand.NewSource(e.opts.Seed + 1))

	start := time.Now()
	orbits := systems.Allocate(counts.Electrons, base, rng, e.opts.Distribution)
	return &orbitResult{
		orbits:   orbits,
		base:     base,
		allocate: time.Since(start),
	}
}

// BaseRadius returns the innermost orbit unit for a nucleus of the given size:
// sphereRadius * cbrt(nucleons) * factor. An empty nucleus is sized as one nucleon
// so that electrons around it still get distinct shells.
func BaseRadius(nucleons int, sphereRadius, factor float64) float64 {
	return sphereRadius * math.Cbrt(float64(max(nucleons, 1))) * factor
}
