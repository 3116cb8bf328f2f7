package layout

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/systems"
)

var sodium = Inputs{AtomicNumber: 11, AtomicMass: 22.9898, Charge: 0}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Counts
	}{
		{"sodium", sodium, Counts{Protons: 11, Neutrons: 11, Electrons: 11}},
		{"sodium ion", Inputs{11, 22.9898, 1}, Counts{Protons: 11, Neutrons: 11, Electrons: 10}},
		{"anion", Inputs{17, 35.45, -1}, Counts{Protons: 17, Neutrons: 18, Electrons: 18}},
		{"mass below number", Inputs{8, 4, 0}, Counts{Protons: 8, Neutrons: 0, Electrons: 8}},
		{"charge above number", Inputs{2, 4, 5}, Counts{Protons: 2, Neutrons: 2, Electrons: 0}},
		{"fractional", Inputs{1.9, 3.5, 0.5}, Counts{Protons: 1, Neutrons: 1, Electrons: 1}},
		{"empty", Inputs{}, Counts{}},
		{"negative number", Inputs{-3, 0, 0}, Counts{Protons: 0, Neutrons: 3, Electrons: 0}},
		{"nan", Inputs{math.NaN(), 1, 0}, Counts{}},
		{"inf mass", Inputs{1, math.Inf(1), 0}, Counts{Protons: 1, Neutrons: 0, Electrons: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.in); got != tt.want {
				t.Errorf("Derive(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestComputeSodium(t *testing.T) {
	e := NewEngine(DefaultOptions(1))
	l, err := e.Compute(context.Background(), sodium)
	if err != nil {
		t.Fatal(err)
	}

	if len(l.Nucleons) != 22 {
		t.Fatalf("expected 22 nucleons, got %d", len(l.Nucleons))
	}
	if len(l.Orbits) != 11 {
		t.Fatalf("expected 11 orbits, got %d", len(l.Orbits))
	}

	protons := 0
	for _, n := range l.Nucleons {
		if n.Kind == components.KindProton {
			protons++
		}
		if d := r3.Norm(n.Position); d > l.ContainerRadius-l.SphereRadius+1e-9 {
			t.Errorf("nucleon at %v outside container", n.Position)
		}
	}
	if protons != 11 {
		t.Errorf("expected 11 protons by alternation, got %d", protons)
	}

	wantBase := 0.5 * math.Cbrt(22) * 3
	if math.Abs(l.BaseRadius-wantBase) > 1e-12 {
		t.Errorf("base radius %v, want %v", l.BaseRadius, wantBase)
	}
	fills := map[int]int{}
	for _, o := range l.Orbits {
		fills[o.Level]++
		if math.Abs(o.Radius-wantBase*2*float64(o.Level)) > 1e-9 {
			t.Errorf("orbit at level %d has radius %v", o.Level, o.Radius)
		}
	}
	if fills[1] != 2 || fills[2] != 8 || fills[3] != 1 || len(fills) != 3 {
		t.Errorf("unexpected shell fills %v", fills)
	}
}

func TestComputeMemoizes(t *testing.T) {
	e := NewEngine(DefaultOptions(1))
	a, err := e.Compute(context.Background(), sodium)
	if err != nil {
		t.Fatal(err)
	}

	// Same derived counts from different raw inputs hit the cache.
	b, err := e.Compute(context.Background(), Inputs{11.4, 22.5, 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if &a.Nucleons[0] != &b.Nucleons[0] || &a.Orbits[0] != &b.Orbits[0] {
		t.Error("expected cached slices to be reused")
	}

	hits, misses := e.CacheStats()
	if hits != 2 || misses != 2 {
		t.Errorf("cache stats hits=%d misses=%d, want 2/2", hits, misses)
	}

	// The ion shares the nucleus but not the orbits.
	c, err := e.Compute(context.Background(), Inputs{11, 22.9898, 1})
	if err != nil {
		t.Fatal(err)
	}
	if &c.Nucleons[0] != &a.Nucleons[0] {
		t.Error("ion should reuse the cached nucleus")
	}
	if len(c.Orbits) != 10 {
		t.Errorf("ion should have 10 orbits, got %d", len(c.Orbits))
	}
}

func TestComputeConcurrentMissesShareWork(t *testing.T) {
	e := NewEngine(DefaultOptions(1))

	const callers = 8
	layouts := make([]*Layout, callers)
	start := make(chan struct{})
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			<-start
			l, err := e.Compute(context.Background(), sodium)
			layouts[i] = l
			return err
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i, l := range layouts[1:] {
		if &l.Nucleons[0] != &layouts[0].Nucleons[0] {
			t.Errorf("caller %d got its own nucleus", i+1)
		}
	}
	hits, misses := e.CacheStats()
	if misses != 2 || hits != 2*callers-2 {
		t.Errorf("cache stats hits=%d misses=%d, want %d/2", hits, misses, 2*callers-2)
	}
}

func TestComputeCapsCounts(t *testing.T) {
	opts := DefaultOptions(1)
	opts.MaxNucleons = 10
	opts.MaxElectrons = 4

	tests := []struct {
		name string
		in   Inputs
		want Counts
	}{
		{"under the caps", Inputs{2, 4, 0}, Counts{Protons: 2, Neutrons: 2, Electrons: 2}},
		{"neutrons dropped first", Inputs{8, 20, 0}, Counts{Protons: 8, Neutrons: 2, Electrons: 4}},
		{"protons capped", Inputs{30, 60, 29}, Counts{Protons: 10, Neutrons: 0, Electrons: 1}},
	}

	e := NewEngine(opts)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := e.Compute(context.Background(), tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if l.Counts != tt.want {
				t.Errorf("counts = %+v, want %+v", l.Counts, tt.want)
			}
			if len(l.Nucleons) != tt.want.Nucleons() || len(l.Orbits) != tt.want.Electrons {
				t.Errorf("got %d nucleons and %d orbits for %+v", len(l.Nucleons), len(l.Orbits), tt.want)
			}
		})
	}
}

func TestComputeDeterministicAcrossEngines(t *testing.T) {
	a, err := NewEngine(DefaultOptions(99)).Compute(context.Background(), sodium)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine(DefaultOptions(99))
	// Warm the cache with a different key first; it must not change the sodium result.
	if _, err := e.Compute(context.Background(), Inputs{3, 7, 0}); err != nil {
		t.Fatal(err)
	}
	b, err := e.Compute(context.Background(), sodium)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Nucleons {
		if a.Nucleons[i] != b.Nucleons[i] {
			t.Fatalf("nucleon %d differs", i)
		}
	}
	for i := range a.Orbits {
		if a.Orbits[i] != b.Orbits[i] {
			t.Fatalf("orbit %d differs", i)
		}
	}
}

func TestComputeDegenerate(t *testing.T) {
	e := NewEngine(DefaultOptions(1))

	l, err := e.Compute(context.Background(), Inputs{})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nucleons) != 0 || len(l.Orbits) != 0 {
		t.Errorf("empty atom should have no particles, got %d/%d", len(l.Nucleons), len(l.Orbits))
	}

	// Electrons with no nucleus still get distinct shells.
	l, err = e.Compute(context.Background(), Inputs{AtomicNumber: 0, AtomicMass: 0, Charge: -3})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Orbits) != 3 {
		t.Fatalf("expected 3 orbits, got %d", len(l.Orbits))
	}
	if l.Orbits[0].Radius <= 0 || l.Orbits[2].Radius <= l.Orbits[0].Radius {
		t.Errorf("expected increasing positive radii, got %v and %v", l.Orbits[0].Radius, l.Orbits[2].Radius)
	}
}

func TestComputeCancelledIsNotCached(t *testing.T) {
	e := NewEngine(DefaultOptions(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Compute(ctx, sodium); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	l, err := e.Compute(context.Background(), sodium)
	if err != nil {
		t.Fatalf("compute after cancel failed: %v", err)
	}
	if len(l.Nucleons) != 22 {
		t.Errorf("expected a full nucleus after retry, got %d", len(l.Nucleons))
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Orbits.Distribution = "spread"

	opts, err := OptionsFromConfig(cfg, 5)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Distribution != systems.DistributionSpread {
		t.Errorf("distribution = %v, want spread", opts.Distribution)
	}
	if opts.Palette.Proton.Color != cfg.Derived.ProtonColor {
		t.Error("palette should use the configured proton colour")
	}
	if opts.MaxNucleons != cfg.Nucleus.MaxNucleons || opts.MaxElectrons != cfg.Orbits.MaxElectrons {
		t.Errorf("limits = %d/%d, want the configured ones", opts.MaxNucleons, opts.MaxElectrons)
	}
	if opts.Iterations != cfg.Nucleus.Iterations || opts.Seed != 5 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestSessionWait(t *testing.T) {
	s := NewSession(NewEngine(DefaultOptions(1)))
	defer s.Close()

	if l, ok := s.Poll(); ok || l != nil {
		t.Fatal("fresh session should have nothing to poll")
	}

	s.Submit(sodium)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	l, err := s.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if l.Counts.Electrons != 11 {
		t.Errorf("expected sodium layout, got %+v", l.Counts)
	}
	if _, ok := s.Poll(); ok {
		t.Error("Wait should consume the fresh layout")
	}
}

func TestSessionSupersedes(t *testing.T) {
	s := NewSession(NewEngine(DefaultOptions(1)))
	defer s.Close()

	// A large nucleus that will still be relaxing when it is superseded.
	s.Submit(Inputs{AtomicNumber: 1500, AtomicMass: 3000})
	s.Submit(Inputs{AtomicNumber: 2, AtomicMass: 4})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	l, err := s.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if l.Counts.Protons != 2 {
		t.Fatalf("expected the newest submission, got %+v", l.Counts)
	}

	// Give a stale goroutine the chance to finish; it must not replace the result.
	time.Sleep(10 * time.Millisecond)
	if got, _ := s.Poll(); got != l {
		t.Errorf("stale layout replaced the newest one: %+v", got.Counts)
	}
}

func TestSessionPoll(t *testing.T) {
	s := NewSession(NewEngine(DefaultOptions(1)))
	defer s.Close()

	s.Submit(Inputs{AtomicNumber: 1, AtomicMass: 1})
	deadline := time.Now().Add(10 * time.Second)
	for {
		if l, ok := s.Poll(); ok {
			if l.Counts.Protons != 1 {
				t.Errorf("unexpected layout %+v", l.Counts)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("layout never arrived")
		}
		time.Sleep(time.Millisecond)
	}

	if _, ok := s.Poll(); ok {
		t.Error("second poll should report no new layout")
	}
}

func TestSessionWaitTimeout(t *testing.T) {
	s := NewSession(NewEngine(DefaultOptions(1)))
	defer s.Close()

	s.Submit(Inputs{AtomicNumber: 1500, AtomicMass: 3000})
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	if _, err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSessionWaitReturnsNoLayoutOnFailure(t *testing.T) {
	s := NewSession(NewEngine(DefaultOptions(1)))

	s.Submit(sodium)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	// After Close every computation is cancelled, so this submission fails.
	s.Close()
	s.Submit(Inputs{AtomicNumber: 3, AtomicMass: 7})
	l, err := s.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if l != nil {
		t.Errorf("failed submission returned the older layout %+v", l.Counts)
	}
	s.Close()
}
