package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// PackingStats summarises the quality of one packed nucleus.
type PackingStats struct {
	Count int `csv:"count"`

	// Distance of nucleon centres from the origin
	RadialMean float64 `csv:"radial_mean"`
	RadialStd  float64 `csv:"radial_std"`
	RadialP50  float64 `csv:"radial_p50"`
	RadialP90  float64 `csv:"radial_p90"`
	RadialMax  float64 `csv:"radial_max"`

	// Pairwise spacing; overlaps are pairs closer than one diameter
	MinPairDistance float64 `csv:"min_pair_distance"`
	Overlaps        int     `csv:"overlaps"`
	MaxOverlapDepth float64 `csv:"max_overlap_depth"`
	MeanOverlap     float64 `csv:"mean_overlap"`

	// Whether every centre lies within container - radius
	Contained bool `csv:"contained"`
}

// overlapTolerance absorbs rounding in pairs that touch exactly.
const overlapTolerance = 1e-9

// ComputePackingStats measures positions packed with spheres of radius inside container.
// The pairwise pass is quadratic; it is meant for reporting, not per-frame use.
func ComputePackingStats(positions []r3.Vec, radius, container float64) PackingStats {
	n := len(positions)
	s := PackingStats{Count: n, Contained: true}
	if n == 0 {
		return s
	}

	radial := make([]float64, n)
	limit := container - radius + overlapTolerance
	for i, p := range positions {
		radial[i] = r3.Norm(p)
		if radial[i] > limit {
			s.Contained = false
		}
	}

	s.RadialMean, s.RadialStd = stat.PopMeanStdDev(radial, nil)
	s.RadialMax = floats.Max(radial)
	sorted := make([]float64, n)
	copy(sorted, radial)
	sort.Float64s(sorted)
	s.RadialP50 = Percentile(sorted, 0.50)
	s.RadialP90 = Percentile(sorted, 0.90)

	if n < 2 {
		return s
	}

	diameter := 2 * radius
	s.MinPairDistance = math.Inf(1)
	var depthSum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := r3.Norm(r3.Sub(positions[i], positions[j]))
			s.MinPairDistance = math.Min(s.MinPairDistance, d)
			if depth := diameter - d; depth > overlapTolerance {
				s.Overlaps++
				depthSum += depth
				s.MaxOverlapDepth = math.Max(s.MaxOverlapDepth, depth)
			}
		}
	}
	if s.Overlaps > 0 {
		s.MeanOverlap = depthSum / float64(s.Overlaps)
	}
	return s
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation. p should be in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer.
func (s PackingStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("radial_mean", s.RadialMean),
		slog.Float64("radial_std", s.RadialStd),
		slog.Float64("radial_p90", s.RadialP90),
		slog.Float64("radial_max", s.RadialMax),
		slog.Float64("min_pair_distance", s.MinPairDistance),
		slog.Int("overlaps", s.Overlaps),
		slog.Float64("max_overlap_depth", s.MaxOverlapDepth),
		slog.Bool("contained", s.Contained),
	)
}

// LogStats logs the packing stats at info level.
func (s PackingStats) LogStats() {
	slog.Info("packing", "stats", s)
}
