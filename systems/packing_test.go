package systems

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/geom"
)

const containEps = 1e-9

func newTestPacker(seed int64) *Packer {
	return NewPacker(rand.New(rand.NewSource(seed)))
}

func TestContainerRadius(t *testing.T) {
	tests := []struct {
		count  int
		radius float64
		want   float64
	}{
		{0, 0.5, 0},
		{1, 0.5, 0.75},
		{8, 0.5, 1.5},
		{27, 1, 4.5},
	}

	for _, tt := range tests {
		got := ContainerRadius(tt.count, tt.radius, DefaultContainerFactor)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ContainerRadius(%d, %v) = %v, want %v", tt.count, tt.radius, got, tt.want)
		}
	}
}

func TestPackCardinalityAndContainment(t *testing.T) {
	const radius = 0.5

	for _, count := range []int{0, 1, 2, 3, 22, 70, 150} {
		p := newTestPacker(int64(count) + 1)
		positions, err := p.Pack(context.Background(), count, radius)
		if err != nil {
			t.Fatalf("Pack(%d) failed: %v", count, err)
		}
		if len(positions) != count {
			t.Fatalf("Pack(%d) returned %d positions", count, len(positions))
		}

		limit := p.ContainerRadius(count, radius) - radius
		for i, pos := range positions {
			if !geom.Finite(pos) {
				t.Fatalf("count %d: position %d not finite: %v", count, i, pos)
			}
			if d := r3.Norm(pos); d > limit+containEps {
				t.Errorf("count %d: position %d at distance %v exceeds limit %v", count, i, d, limit)
			}
		}
	}
}

func TestPackZeroReturnsEmptySlice(t *testing.T) {
	positions, err := newTestPacker(1).Pack(context.Background(), 0, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if positions == nil || len(positions) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", positions)
	}
}

func TestPackNonFiniteRadius(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions, err := newTestPacker(1).Pack(context.Background(), 3, tt.radius)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(positions) != 3 {
				t.Fatalf("expected 3 positions, got %d", len(positions))
			}
			for i, pos := range positions {
				if !geom.Finite(pos) {
					t.Errorf("position %d not finite: %v", i, pos)
				}
				if r3.Norm(pos) > containEps {
					t.Errorf("position %d should collapse onto the origin, got %v", i, pos)
				}
			}
		})
	}
}

func TestPackDeterministicUnderSeed(t *testing.T) {
	a, err := newTestPacker(42).Pack(context.Background(), 40, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newTestPacker(42).Pack(context.Background(), 40, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}

	c, _ := newTestPacker(43).Pack(context.Background(), 40, 0.5)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should give different layouts")
	}
}

func TestPackGridMatchesPairwiseScan(t *testing.T) {
	for _, count := range []int{10, 80, 200} {
		brute := newTestPacker(7)
		brute.GridThreshold = 0

		grid := newTestPacker(7)
		grid.GridThreshold = 1

		a, err := brute.Pack(context.Background(), count, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		b, err := grid.Pack(context.Background(), count, 0.5)
		if err != nil {
			t.Fatal(err)
		}

		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("count %d: position %d differs: pairwise %v, grid %v", count, i, a[i], b[i])
			}
		}
	}
}

func TestRelaxCoincidentParticles(t *testing.T) {
	const radius = 0.5

	for _, grid := range []int{0, 1} {
		p := newTestPacker(1)
		p.GridThreshold = grid

		positions := make([]r3.Vec, 6) // all at the origin
		container := p.ContainerRadius(len(positions), radius)
		if err := p.Relax(context.Background(), positions, radius, container); err != nil {
			t.Fatal(err)
		}

		for i, pos := range positions {
			if !geom.Finite(pos) {
				t.Fatalf("grid=%d: position %d not finite: %v", grid, i, pos)
			}
			if r3.Norm(pos) > container-radius+containEps {
				t.Errorf("grid=%d: position %d escaped container: %v", grid, i, pos)
			}
		}
	}
}

func TestRelaxCoincidentPairSeparates(t *testing.T) {
	p := newTestPacker(1)
	positions := make([]r3.Vec, 2)

	if err := p.Relax(context.Background(), positions, 0.5, 10); err != nil {
		t.Fatal(err)
	}

	d := r3.Norm(r3.Sub(positions[0], positions[1]))
	if d < 0.9 {
		t.Errorf("coincident pair should be pushed apart, distance %v", d)
	}
	if positions[0].X >= positions[1].X {
		t.Errorf("lower index should be pushed toward -X: %v, %v", positions[0], positions[1])
	}
}

func TestRelaxCoincidentAwayFromOrigin(t *testing.T) {
	p := newTestPacker(1)
	same := r3.Vec{X: 0.2, Y: -0.1, Z: 0.3}
	positions := []r3.Vec{same, same, same}

	if err := p.Relax(context.Background(), positions, 0.5, p.ContainerRadius(3, 0.5)); err != nil {
		t.Fatal(err)
	}
	for i, pos := range positions {
		if !geom.Finite(pos) {
			t.Fatalf("position %d not finite: %v", i, pos)
		}
	}
}

func TestRelaxSeparatesOverlaps(t *testing.T) {
	p := newTestPacker(1)
	p.Centering = 0
	positions := []r3.Vec{{X: -0.1}, {X: 0.1}}

	if err := p.Relax(context.Background(), positions, 0.5, 10); err != nil {
		t.Fatal(err)
	}

	d := r3.Norm(r3.Sub(positions[0], positions[1]))
	if d < 0.99 {
		t.Errorf("expected pair pushed to ~diameter apart, got distance %v", d)
	}
}

func TestRelaxZeroIterationsStillClamps(t *testing.T) {
	p := newTestPacker(1)
	p.Iterations = 0
	positions := []r3.Vec{{X: 5}, {Y: -0.1}}

	if err := p.Relax(context.Background(), positions, 0.5, 1.5); err != nil {
		t.Fatal(err)
	}
	if d := r3.Norm(positions[0]); math.Abs(d-1) > containEps {
		t.Errorf("expected far particle clamped to 1, got %v", d)
	}
	if positions[1] != (r3.Vec{Y: -0.1}) {
		t.Errorf("inner particle should not move, got %v", positions[1])
	}
}

func TestPackCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	positions, err := newTestPacker(1).Pack(ctx, 30, 0.5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if positions != nil {
		t.Errorf("cancelled pack should return no positions, got %d", len(positions))
	}
}

func TestSpatialGridNeighbors(t *testing.T) {
	positions := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 0.9, Y: 0, Z: 0},
		{X: 3, Y: 3, Z: 3},
		{X: -0.5, Y: 0.5, Z: -0.5},
	}
	g := NewSpatialGrid(4, 1)
	g.Build(positions)

	got := g.NeighborsInto(nil, positions[0])
	want := map[int]bool{0: true, 1: true, 3: true}
	for _, idx := range got {
		if idx == 2 {
			t.Errorf("far particle 2 should not be a neighbour of particle 0")
		}
		delete(want, idx)
	}
	if len(want) != 0 {
		t.Errorf("missing neighbours %v in %v", want, got)
	}

	for k := 1; k < len(got); k++ {
		if got[k-1] > got[k] {
			t.Fatalf("neighbours not sorted: %v", got)
		}
	}

	// Moving particle 2 next to the origin makes it a neighbour.
	positions[2] = r3.Vec{X: 0.2}
	g.Move(2, positions[2])
	found := false
	for _, idx := range g.NeighborsInto(nil, positions[0]) {
		if idx == 2 {
			found = true
		}
	}
	if !found {
		t.Error("moved particle should be found near the origin")
	}
}

func TestSpatialGridClampsOutside(t *testing.T) {
	g := NewSpatialGrid(1, 1)
	g.Build([]r3.Vec{{X: 50}, {X: 49.5}})

	got := g.NeighborsInto(nil, r3.Vec{X: 50})
	if len(got) != 2 {
		t.Errorf("expected both out-of-range particles in the border cell, got %v", got)
	}
}

func benchmarkPack(b *testing.B, count, threshold int) {
	for n := 0; n < b.N; n++ {
		p := newTestPacker(int64(n))
		p.GridThreshold = threshold
		if _, err := p.Pack(context.Background(), count, 0.5); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPackPairwise200(b *testing.B) { benchmarkPack(b, 200, 0) }
func BenchmarkPackGrid200(b *testing.B)     { benchmarkPack(b, 200, 1) }
