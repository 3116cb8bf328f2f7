package systems

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/geom"
)

// Packing defaults.
const (
	DefaultIterations      = 100
	DefaultContainerFactor = 1.5
	DefaultStepSize        = 0.1
	DefaultCentering       = 0.05

	// DefaultGridThreshold is the particle count from which neighbours come from a
	// spatial grid. Below this a plain pairwise scan is faster.
	DefaultGridThreshold = 64
)

// Packer arranges equal spheres into a bounded, roughly close-packed cluster by
// iterative soft-repulsion relaxation. It is an approximation: a fixed number of
// passes, no convergence check, no guarantee that overlaps are fully resolved.
type Packer struct {
	Iterations      int     // relaxation passes
	ContainerFactor float64 // container radius = cbrt(count) * radius * factor
	StepSize        float64 // force integration step
	Centering       float64 // magnitude of the pull toward the origin
	GridThreshold   int     // use the spatial grid from this count on (0 = never)

	Rand *rand.Rand
}

// NewPacker returns a packer with the default parameters drawing from rng.
func NewPacker(rng *rand.Rand) *Packer {
	return &Packer{
		Iterations:      DefaultIterations,
		ContainerFactor: DefaultContainerFactor,
		StepSize:        DefaultStepSize,
		Centering:       DefaultCentering,
		GridThreshold:   DefaultGridThreshold,
		Rand:            rng,
	}
}

// ContainerRadius returns the bounding sphere radius for count spheres of the given radius.
// The cube root keeps volumetric density roughly constant as count grows.
func ContainerRadius(count int, radius, factor float64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Cbrt(float64(count)) * radius * factor
}

// ContainerRadius returns the container radius this packer uses for count spheres.
func (p *Packer) ContainerRadius(count int, radius float64) float64 {
	return ContainerRadius(count, radius, p.ContainerFactor)
}

// Pack returns exactly count positions, in initialization order, each within
// ContainerRadius(count, radius) - radius of the origin. A negative or
// non-finite radius packs as 0.
// The only error is ctx's, when it is cancelled between passes.
func (p *Packer) Pack(ctx context.Context, count int, radius float64) ([]r3.Vec, error) {
	if count <= 0 {
		return []r3.Vec{}, nil
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		radius = 0
	}
	radius = max(radius, 0)

	container := p.ContainerRadius(count, radius)
	positions := p.Scatter(count, container)
	if err := p.Relax(ctx, positions, radius, container); err != nil {
		return nil, err
	}
	return positions, nil
}

// Scatter samples count points uniformly by volume inside a sphere of the given radius.
func (p *Packer) Scatter(count int, container float64) []r3.Vec {
	positions := make([]r3.Vec, count)
	for i := range positions {
		theta := p.Rand.Float64() * 2 * math.Pi
		phi := math.Acos(2*p.Rand.Float64() - 1)
		r := container * math.Cbrt(p.Rand.Float64())
		positions[i] = geom.SphericalToCartesian(r, theta, phi)
	}
	return positions
}

// Relax runs the relaxation passes over positions in place.
// Each particle is updated in turn, so later particles in a pass see the
// already-moved earlier ones. After every move the particle is clamped to
// container - radius; that clamp, not the repulsion, bounds the cluster.
func (p *Packer) Relax(ctx context.Context, positions []r3.Vec, radius, container float64) error {
	n := len(positions)
	if n == 0 {
		return nil
	}

	limit := max(container-radius, 0)
	if p.Iterations <= 0 {
		for i := range positions {
			positions[i] = geom.ClampLength(positions[i], limit)
		}
		return nil
	}

	diameter := 2 * radius

	var grid *SpatialGrid
	if p.GridThreshold > 0 && n >= p.GridThreshold && diameter > 0 {
		grid = NewSpatialGrid(container, diameter)
		grid.Build(positions)
	}
	candidates := make([]int, 0, 32)

	for range p.Iterations {
		if err := ctx.Err(); err != nil {
			return err
		}

		for i := range positions {
			var force r3.Vec

			// Repulsion from overlapping neighbours
			if grid != nil {
				candidates = grid.NeighborsInto(candidates[:0], positions[i])
				for _, j := range candidates {
					force = repel(force, positions, i, j, diameter)
				}
			} else {
				for j := range positions {
					force = repel(force, positions, i, j, diameter)
				}
			}

			// Weak pull toward the origin; skipped for a particle sitting on it
			if dir, ok := geom.SafeUnit(positions[i]); ok {
				force = r3.Sub(force, r3.Scale(p.Centering, dir))
			}

			pos := r3.Add(positions[i], r3.Scale(p.StepSize, force))
			pos = geom.ClampLength(pos, limit)
			positions[i] = pos

			if grid != nil {
				grid.Move(i, pos)
			}
		}
	}

	return nil
}

// repel adds the push on particle i from particle j, proportional to their penetration depth.
func repel(force r3.Vec, positions []r3.Vec, i, j int, diameter float64) r3.Vec {
	if i == j {
		return force
	}

	diff := r3.Sub(positions[i], positions[j])
	d := r3.Norm(diff)
	if d >= diameter {
		return force
	}

	dir, ok := geom.SafeUnit(diff)
	if !ok {
		dir = coincidentDirection(i, j)
	}
	return r3.Add(force, r3.Scale(diameter-d, dir))
}

// coincidentDirection separates two particles at the same point: the pair is
// pushed apart along X, the higher index toward +X.
func coincidentDirection(i, j int) r3.Vec {
	if i > j {
		return geom.UnitX
	}
	return r3.Scale(-1, geom.UnitX)
}
