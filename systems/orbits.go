package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/geom"
)

// Distribution selects how orbit planes are oriented within a shell.
type Distribution uint8

const (
	// DistributionRandom gives each orbit three independent uniform angles in [0, pi).
	DistributionRandom Distribution = iota
	// DistributionSpread orients orbit planes along a spiral over the sphere, one
	// step per electron in the shell. Draws nothing from the random source.
	DistributionSpread
)

// String returns the config name of the distribution.
func (d Distribution) String() string {
	switch d {
	case DistributionRandom:
		return "random"
	case DistributionSpread:
		return "spread"
	default:
		return fmt.Sprintf("distribution(%d)", uint8(d))
	}
}

// ParseDistribution maps a config name to a Distribution. Empty means random.
func ParseDistribution(s string) (Distribution, error) {
	switch s {
	case "", "random":
		return DistributionRandom, nil
	case "spread":
		return DistributionSpread, nil
	default:
		return DistributionRandom, fmt.Errorf("unknown orbit distribution %q", s)
	}
}

// Shell is one filled orbital level.
type Shell struct {
	Level    int // n >= 1
	Capacity int // 2n^2
	Fill     int // electrons placed, min(remaining, Capacity)
}

// ShellCapacity returns 2n^2.
func ShellCapacity(level int) int {
	return 2 * level * level
}

// ShellRadius returns the orbit radius of level n: baseRadius * 2n.
func ShellRadius(level int, baseRadius float64) float64 {
	return baseRadius * float64(2*level)
}

// ShellPlan distributes electrons over shells in ascending level order. Every
// shell but the last is full. Zero or negative counts give no shells.
// The loop runs O(cbrt(electrons)) times since capacity grows quadratically.
func ShellPlan(electrons int) []Shell {
	var shells []Shell
	remaining := electrons
	for n := 1; remaining > 0; n++ {
		capacity := ShellCapacity(n)
		fill := min(remaining, capacity)
		shells = append(shells, Shell{Level: n, Capacity: capacity, Fill: fill})
		remaining -= fill
	}
	return shells
}

// Allocate returns one orbit per electron, ordered by ascending shell level and
// then by index within the shell. Rotations are fixed here and never recomputed.
func Allocate(electrons int, baseRadius float64, rng *rand.Rand, dist Distribution) []components.Orbit {
	if electrons <= 0 {
		return []components.Orbit{}
	}

	orbits := make([]components.Orbit, 0, electrons)
	for _, shell := range ShellPlan(electrons) {
		radius := ShellRadius(shell.Level, baseRadius)
		for i := range shell.Fill {
			var rot geom.Euler
			switch dist {
			case DistributionSpread:
				rot = spreadRotation(i, shell.Fill)
			default:
				rot = geom.Euler{
					X: rng.Float64() * math.Pi,
					Y: rng.Float64() * math.Pi,
					Z: rng.Float64() * math.Pi,
				}
			}

			orbits = append(orbits, components.Orbit{
				Level:    shell.Level,
				Index:    i,
				Label:    len(orbits) + 1,
				Radius:   radius,
				Curve:    geom.Circle(radius),
				Rotation: rot,
				Plane:    geom.PlaneOf(rot),
			})
		}
	}
	return orbits
}

// spreadRotation tilts orbit i of k along a spherical spiral.
func spreadRotation(i, k int) geom.Euler {
	phi := math.Acos(-1 + 2*float64(i)/float64(k))
	theta := math.Mod(math.Sqrt(float64(k)*math.Pi)*phi, 2*math.Pi)
	return geom.Euler{X: phi, Y: theta}
}
