package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/ui"
)

// Segments per drawn orbit ring
const ringSegments = 96

const controlsText = "Drag: orbit  Right-drag: pan  Wheel: zoom  Space: pause  O: orbits  L: labels  P: perf  Tab: inputs  S: snapshot  Home: reset"

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(g.cfg.Derived.Background)

	if g.frame != nil {
		rl.BeginMode3D(g.camera3D())
		g.drawNucleus()
		if g.showOrbits {
			g.drawOrbits()
		}
		g.drawElectrons()
		rl.EndMode3D()

		if g.showLabels {
			g.drawLabels()
		}
	}

	g.drawUI()
}

// camera3D mirrors the orbit camera into raylib's.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(g.camera.Position()),
		Target:     vec3(g.camera.Target),
		Up:         rl.Vector3{Y: 1},
		Fovy:       float32(g.camera.FOV),
		Projection: rl.CameraPerspective,
	}
}

func (g *Game) drawNucleus() {
	l := g.frame.Layout
	if l == nil || l.SphereRadius <= 0 {
		return
	}
	radius := float32(l.SphereRadius)
	for _, n := range g.frame.Nucleons {
		rl.DrawSphere(vec3(n.Position), radius, n.Color)
	}
}

func (g *Game) drawOrbits() {
	ring := g.cfg.Derived.ElectronColor
	ring.A = 70
	for _, e := range g.frame.Electrons {
		prev := e.Orbit.PointAt(0)
		for i := 1; i <= ringSegments; i++ {
			next := e.Orbit.PointAt(float64(i) / ringSegments)
			rl.DrawLine3D(vec3(prev), vec3(next), ring)
			prev = next
		}
	}
}

func (g *Game) drawElectrons() {
	radius := float32(g.cfg.Electron.Radius)
	for _, e := range g.frame.Electrons {
		rl.DrawSphere(vec3(e.Position), radius, g.cfg.Derived.ElectronColor)
	}
}

// drawLabels draws each electron's ordinal at its projected label position,
// scaled with distance so labels keep a fixed world size.
func (g *Game) drawLabels() {
	for _, e := range g.frame.Electrons {
		p := e.Billboard.LabelPosition
		sx, sy, ok := g.camera.WorldToScreen(p)
		if !ok {
			continue
		}
		size := int32(math.Round(g.cfg.Electron.LabelSize * g.camera.PixelsPerUnit(p)))
		if size < 8 {
			continue
		}
		text := fmt.Sprintf("%d", e.Label)
		w := rl.MeasureText(text, size)
		rl.DrawText(text, int32(sx)-w/2, int32(sy)-size/2, size, rl.RayWhite)
	}
}

func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:         title(g.inputs),
		ProtonColor:   g.cfg.Derived.ProtonColor,
		NeutronColor:  g.cfg.Derived.NeutronColor,
		ElectronColor: g.cfg.Derived.ElectronColor,
		Tick:          g.tick,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
		Computing:     g.computing,
	}
	if l := g.scene.Layout(); l != nil {
		data.Protons = l.Counts.Protons
		data.Neutrons = l.Counts.Neutrons
		data.Electrons = l.Counts.Electrons
		data.Shells = shellFills(l)
	}
	data.CacheHits, data.CacheMisses = g.engine.CacheStats()
	g.hud.Draw(data)

	if g.showPerf {
		g.perfPanel.Draw(g.scene.Perf().Stats(), int32(g.screenHeight))
	}

	if in, changed := g.inputsPanel.Draw(g.inputs, int32(g.screenWidth)); changed {
		g.submit(in)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsText)
}

// title names the inputs, e.g. "Z=11 A=22.99 +1".
func title(in layout.Inputs) string {
	s := fmt.Sprintf("Z=%g A=%.2f", in.AtomicNumber, in.AtomicMass)
	if in.Charge != 0 {
		s += fmt.Sprintf(" %+g", in.Charge)
	}
	return s
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
