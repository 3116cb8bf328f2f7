// Package game ties the layout engine, the animated scene and the viewer UI
// together, for both the windowed and the headless runs.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/atom/camera"
	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/scene"
	"github.com/pthm-cable/atom/telemetry"
	"github.com/pthm-cable/atom/ui"
)

// Options configures a Game.
type Options struct {
	Seed        int64
	Inputs      layout.Inputs
	LogStats    bool
	SnapshotDir string
	OutputDir   string
	Headless    bool
}

// Game holds the complete viewer state.
type Game struct {
	cfg  *config.Config
	seed int64

	engine  *layout.Engine
	session *layout.Session
	scene   *scene.Scene
	frame   *scene.Frame

	// Inputs of the newest submission
	inputs    layout.Inputs
	computing bool
	layouts   int

	// Rendering
	camera      *camera.Camera
	hud         *ui.HUD
	perfPanel   *ui.PerfPanel
	inputsPanel *ui.InputsPanel

	// State
	tick       int
	paused     bool
	showOrbits bool
	showLabels bool
	showPerf   bool

	// Telemetry
	outputManager *telemetry.OutputManager
	logStats      bool
	snapshotDir   string
	sinceStats    float64

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the engine, scene and camera from the global config
// and submits the initial inputs.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	engineOpts, err := layout.OptionsFromConfig(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}
	sceneOpts, err := scene.OptionsFromConfig(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("output: %w", err)
	}

	engine := layout.NewEngine(engineOpts)
	g := &Game{
		cfg:           cfg,
		seed:          opts.Seed,
		engine:        engine,
		session:       layout.NewSession(engine),
		scene:         scene.New(sceneOpts),
		showOrbits:    true,
		showLabels:    true,
		outputManager: om,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		screenWidth:   float32(cfg.Screen.Width),
		screenHeight:  float32(cfg.Screen.Height),
	}

	g.camera = camera.New(
		float64(g.screenWidth), float64(g.screenHeight),
		cfg.Camera.Distance, cfg.Camera.MinDistance, cfg.Camera.MaxDistance,
		cfg.Camera.FOV,
	)
	if !opts.Headless {
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(260)
		g.inputsPanel = ui.NewInputsPanel(280)
	}

	g.submit(opts.Inputs)
	return g, nil
}

// submit starts computing a layout for in; the scene keeps showing the
// previous atom until it arrives.
func (g *Game) submit(in layout.Inputs) {
	g.inputs = in
	g.computing = true
	g.session.Submit(in)
}

// pollLayout hands a newly finished layout to the scene.
func (g *Game) pollLayout() {
	l, ok := g.session.Poll()
	if !ok {
		return
	}
	g.applyLayout(l)
}

func (g *Game) applyLayout(l *layout.Layout) {
	g.computing = false
	g.scene.Load(l)
	g.recordLayout(l)
	g.layouts++
}

// Update runs one frame of the windowed viewer.
func (g *Game) Update(dt float64) {
	g.handleInput()
	g.pollLayout()

	if g.paused {
		dt = 0
	}
	// Labels keep facing the camera while paused.
	g.frame = g.scene.Tick(dt, g.camera.Position())
	g.scene.Perf().RecordFrame()
	g.tick++

	g.flushTelemetry(dt)
}

// UpdateHeadless runs one fixed-step tick without graphics. The first call
// blocks until the initial layout is ready.
func (g *Game) UpdateHeadless(ctx context.Context) error {
	if g.tick == 0 {
		l, err := g.session.Wait(ctx)
		if err != nil {
			return fmt.Errorf("initial layout: %w", err)
		}
		g.applyLayout(l)
	} else {
		g.pollLayout()
	}

	dt := g.cfg.Telemetry.HeadlessDT
	g.frame = g.scene.Tick(dt, g.camera.Position())
	g.tick++

	g.flushTelemetry(dt)
	return nil
}

// Tick returns the number of frames run.
func (g *Game) Tick() int {
	return g.tick
}

// Unload stops background work and closes output files.
func (g *Game) Unload() {
	g.session.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
