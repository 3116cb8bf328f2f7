package scene

import (
	"math"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/systems"
	"github.com/pthm-cable/atom/telemetry"
)

// NucleonView is a nucleon as drawn this tick.
type NucleonView struct {
	Position r3.Vec
	Kind     components.Kind
	components.Appearance
}

// ElectronView is an electron as drawn this tick.
type ElectronView struct {
	Label     int
	Phase     float64
	Position  r3.Vec
	Billboard components.Billboard
	Orbit     *components.Orbit
}

// Frame is everything the renderer needs for one tick. It is owned by the
// Scene and overwritten by the next Tick.
type Frame struct {
	Time      float64
	Layout    *layout.Layout
	Nucleons  []NucleonView
	Electrons []ElectronView // ordered by label
}

// Scene owns the ECS world for one displayed atom.
type Scene struct {
	opts   Options
	driver systems.Driver
	rng    *rand.Rand
	noise  opensimplex.Noise
	perf   *telemetry.PerfCollector

	world *ecs.World

	nucleonMapper *ecs.Map3[
		components.Nucleon,
		components.Wobble,
		components.Transform,
	]
	nucleonFilter *ecs.Filter3[
		components.Nucleon,
		components.Wobble,
		components.Transform,
	]
	electronMapper *ecs.Map4[
		components.ElectronState,
		components.Label,
		components.Billboard,
		components.Transform,
	]
	electronFilter *ecs.Filter4[
		components.ElectronState,
		components.Label,
		components.Billboard,
		components.Transform,
	]

	current    *layout.Layout
	pending    *layout.Layout
	hasPending bool

	clock     float64
	viewpoint r3.Vec
	frame     Frame
}

// New creates an empty scene.
func New(opts Options) *Scene {
	world := ecs.NewWorld()

	return &Scene{
		opts:   opts,
		driver: systems.Driver{LabelOffset: opts.LabelOffset},
		rng:    rand.New(rand.NewSource(opts.Seed)),
		noise:  opensimplex.New(opts.Seed),
		perf:   telemetry.NewPerfCollector(opts.PerfWindow),
		world:  world,
		nucleonMapper: ecs.NewMap3[
			components.Nucleon,
			components.Wobble,
			components.Transform,
		](world),
		nucleonFilter: ecs.NewFilter3[
			components.Nucleon,
			components.Wobble,
			components.Transform,
		](world),
		electronMapper: ecs.NewMap4[
			components.ElectronState,
			components.Label,
			components.Billboard,
			components.Transform,
		](world),
		electronFilter: ecs.NewFilter4[
			components.ElectronState,
			components.Label,
			components.Billboard,
			components.Transform,
		](world),
	}
}

// Perf returns the scene's tick timings.
func (s *Scene) Perf() *telemetry.PerfCollector {
	return s.perf
}

// Layout returns the layout currently displayed, or nil.
func (s *Scene) Layout() *layout.Layout {
	return s.current
}

// Load schedules l to replace the displayed atom on the next Tick.
// A nil layout clears the scene.
func (s *Scene) Load(l *layout.Layout) {
	s.pending = l
	s.hasPending = true
}

// Tick applies a pending layout, advances every electron by dt seconds, moves
// nucleons along their wobble and returns the resulting frame. Labels face viewpoint.
func (s *Scene) Tick(dt float64, viewpoint r3.Vec) *Frame {
	s.perf.StartTick()
	s.viewpoint = viewpoint

	if s.hasPending {
		s.perf.StartPhase(telemetry.PhaseLoad)
		s.apply(s.pending)
		s.pending, s.hasPending = nil, false
	}

	s.clock += dt

	s.perf.StartPhase(telemetry.PhaseElectrons)
	s.updateElectrons(dt)

	s.perf.StartPhase(telemetry.PhaseWobble)
	s.updateWobble()

	s.perf.StartPhase(telemetry.PhaseFrame)
	s.fillFrame()

	s.perf.EndTick()
	return &s.frame
}

// apply rebuilds all entities from l. Electron phases start at random points
// on their orbits.
func (s *Scene) apply(l *layout.Layout) {
	s.clear()
	s.current = l
	if l == nil {
		return
	}

	j := s.opts.Jitter
	for _, n := range l.Nucleons {
		nuc := n
		wob := components.Wobble{Offset: r3.Vec{
			X: s.rng.Float64()*2*j - j,
			Y: s.rng.Float64()*2*j - j,
			Z: s.rng.Float64()*2*j - j,
		}}
		tr := components.Transform{Position: n.Position}
		s.nucleonMapper.NewEntity(&nuc, &wob, &tr)
	}

	for i := range l.Orbits {
		orbit := &l.Orbits[i]
		state := components.ElectronState{
			Orbit: orbit,
			Phase: s.rng.Float64(),
			Speed: s.opts.Speed,
		}
		r := s.driver.Resolve(state, s.viewpoint)
		label := components.Label{N: orbit.Label}
		bb := r.Billboard
		tr := components.Transform{Position: r.Position}
		s.electronMapper.NewEntity(&state, &label, &bb, &tr)
	}
}

// clear removes every entity. Queries must finish before entities are removed.
func (s *Scene) clear() {
	var toRemove []ecs.Entity

	nq := s.nucleonFilter.Query()
	for nq.Next() {
		toRemove = append(toRemove, nq.Entity())
	}
	eq := s.electronFilter.Query()
	for eq.Next() {
		toRemove = append(toRemove, eq.Entity())
	}

	for _, e := range toRemove {
		s.world.RemoveEntity(e)
	}
}

func (s *Scene) updateElectrons(dt float64) {
	query := s.electronFilter.Query()
	for query.Next() {
		state, _, bb, tr := query.Get()
		next, r := s.driver.Advance(*state, dt, s.viewpoint)
		*state = next
		*bb = r.Billboard
		tr.Position = r.Position
	}
}

func (s *Scene) updateWobble() {
	query := s.nucleonFilter.Query()
	for query.Next() {
		nuc, wob, tr := query.Get()
		tr.Position = r3.Add(nuc.Position, s.displacement(nuc.Position, wob.Offset))
	}
}

// displacement returns the wobble offset at the current time. Each component
// stays within Jitter * Amplitude of the layout position.
func (s *Scene) displacement(base, offset r3.Vec) r3.Vec {
	switch s.opts.Wobble {
	case WobbleSine:
		return r3.Scale(math.Sin(s.clock*s.opts.Frequency)*s.opts.Amplitude, offset)
	case WobbleNoise:
		scale := s.opts.Jitter * s.opts.Amplitude
		w := s.clock * s.opts.Frequency
		return r3.Vec{
			X: scale * unitNoise(s.noise.Eval4(base.X, base.Y, base.Z, w)),
			Y: scale * unitNoise(s.noise.Eval4(base.X, base.Y, base.Z, w+31.7)),
			Z: scale * unitNoise(s.noise.Eval4(base.X, base.Y, base.Z, w+63.4)),
		}
	default:
		return r3.Vec{}
	}
}

// unitNoise clamps a raw simplex sample to [-1, 1].
func unitNoise(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func (s *Scene) fillFrame() {
	f := &s.frame
	f.Time = s.clock
	f.Layout = s.current
	f.Nucleons = f.Nucleons[:0]
	f.Electrons = f.Electrons[:0]

	nq := s.nucleonFilter.Query()
	for nq.Next() {
		nuc, _, tr := nq.Get()
		f.Nucleons = append(f.Nucleons, NucleonView{
			Position:   tr.Position,
			Kind:       nuc.Kind,
			Appearance: nuc.Appearance,
		})
	}

	eq := s.electronFilter.Query()
	for eq.Next() {
		state, label, bb, tr := eq.Get()
		f.Electrons = append(f.Electrons, ElectronView{
			Label:     label.N,
			Phase:     state.Phase,
			Position:  tr.Position,
			Billboard: *bb,
			Orbit:     state.Orbit,
		})
	}
	slices.SortFunc(f.Electrons, func(a, b ElectronView) int {
		return a.Label - b.Label
	})
}
