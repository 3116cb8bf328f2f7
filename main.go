package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/game"
	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshotPath := flag.String("snapshot", "", "Rebuild the atom from a saved snapshot (inputs and seed)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	atomicNumber := flag.Float64("z", -1, "Atomic number (negative = use config)")
	atomicMass := flag.Float64("mass", -1, "Atomic mass (negative = use config)")
	charge := flag.Float64("charge", 0, "Ionic charge")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	inputs := layout.Inputs{
		AtomicNumber: cfg.Atom.AtomicNumber,
		AtomicMass:   cfg.Atom.AtomicMass,
		Charge:       cfg.Atom.Charge,
	}
	if *atomicNumber >= 0 {
		inputs.AtomicNumber = *atomicNumber
	}
	if *atomicMass >= 0 {
		inputs.AtomicMass = *atomicMass
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "charge" {
			inputs.Charge = *charge
		}
	})

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if *snapshotPath != "" {
		snap, err := telemetry.LoadSnapshot(*snapshotPath)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		rngSeed = snap.Seed
		inputs = layout.Inputs{
			AtomicNumber: snap.AtomicNumber,
			AtomicMass:   snap.AtomicMass,
			Charge:       snap.Charge,
		}
		slog.Info("restoring snapshot", "path", *snapshotPath, "seed", rngSeed)
	}

	opts := game.Options{
		Seed:        rngSeed,
		Inputs:      inputs,
		LogStats:    *logStats,
		SnapshotDir: *snapshotDir,
		OutputDir:   *outputDir,
		Headless:    *headless,
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Atom")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update(float64(rl.GetFrameTime()))
		g.Draw()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			break
		}
	}
}

// runHeadless ticks without a window until max ticks or an interrupt, then
// saves a final snapshot when a snapshot directory is set.
func runHeadless(opts game.Options, maxTicks int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"inputs", opts.Inputs,
		"max_ticks", maxTicks,
	)

	for ctx.Err() == nil {
		if err := g.UpdateHeadless(ctx); err != nil {
			slog.Error("headless tick failed", "error", err)
			break
		}
		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	if opts.SnapshotDir != "" {
		if _, err := g.SaveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		}
	}
}
