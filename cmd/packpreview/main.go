// Packing preview tool - interactive nucleus packing with sliders.
//
// Usage: go run ./cmd/packpreview
package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"slices"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/atom/components"
	"github.com/pthm-cable/atom/config"
	"github.com/pthm-cable/atom/layout"
	"github.com/pthm-cable/atom/telemetry"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// PackParams holds the slider values.
type PackParams struct {
	Nucleons        float32
	StepSize        float32
	Centering       float32
	ContainerFactor float32
	Iterations      float32
	Seed            int64
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Packing Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := PackParams{
		Nucleons:        23,
		StepSize:        float32(cfg.Nucleus.StepSize),
		Centering:       float32(cfg.Nucleus.Centering),
		ContainerFactor: float32(cfg.Nucleus.ContainerFactor),
		Iterations:      float32(cfg.Nucleus.Iterations),
		Seed:            1,
	}

	var current *layout.Layout
	var stats telemetry.PackingStats
	needsRepack := true

	for !rl.WindowShouldClose() {
		if needsRepack {
			current, err = pack(cfg, params)
			if err != nil {
				panic(err)
			}
			stats = packingStats(current)
			needsRepack = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawNucleus(current, 10, 10, previewSize)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Radial mean: %.3f  max: %.3f  container: %.3f",
			stats.RadialMean, stats.RadialMax, current.ContainerRadius), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Min pair: %.3f  Overlaps: %d  Max depth: %.4f",
			stats.MinPairDistance, stats.Overlaps, stats.MaxOverlapDepth), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Pack time: %s  Contained: %v",
			current.Timing.Pack, stats.Contained), 15, statsY+40, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Packing Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label string, value *float32, lo, hi float32, format string, round bool) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				*value, lo, hi,
			)
			if round {
				v = float32(math.Round(float64(v)))
			}
			rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != *value {
				*value = v
				needsRepack = true
			}
			panelY += 35
		}

		slider("Nucleons", &params.Nucleons, 1, 300, "%.0f", true)
		slider("Step size (force integration)", &params.StepSize, 0.01, 0.5, "%.3f", false)
		slider("Centering (pull to origin)", &params.Centering, 0, 0.3, "%.3f", false)
		slider("Container factor", &params.ContainerFactor, 1, 3, "%.2f", false)
		slider("Iterations (relaxation passes)", &params.Iterations, 0, 300, "%.0f", true)

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reseed") {
			params.Seed++
			needsRepack = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Defaults") {
			params.StepSize = float32(cfg.Nucleus.StepSize)
			params.Centering = float32(cfg.Nucleus.Centering)
			params.ContainerFactor = float32(cfg.Nucleus.ContainerFactor)
			params.Iterations = float32(cfg.Nucleus.Iterations)
			needsRepack = true
		}
		panelY += 45

		rl.DrawText(fmt.Sprintf("Seed: %d", params.Seed), int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25

		// Print config snippet
		rl.DrawText("Config:", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		configText := fmt.Sprintf("nucleus:\n  step_size: %.3f\n  centering: %.3f\n  container_factor: %.2f\n  iterations: %.0f",
			params.StepSize, params.Centering, params.ContainerFactor, params.Iterations)
		rl.DrawText(configText, int32(panelX), int32(panelY), 12, rl.DarkGray)

		rl.EndDrawing()
	}
}

// pack lays out a one-proton atom whose mass is the nucleon count.
func pack(cfg *config.Config, p PackParams) (*layout.Layout, error) {
	c := *cfg
	c.Nucleus.StepSize = float64(p.StepSize)
	c.Nucleus.Centering = float64(p.Centering)
	c.Nucleus.ContainerFactor = float64(p.ContainerFactor)
	c.Nucleus.Iterations = int(p.Iterations)

	opts, err := layout.OptionsFromConfig(&c, p.Seed)
	if err != nil {
		return nil, err
	}
	in := layout.Inputs{AtomicNumber: 1, AtomicMass: float64(p.Nucleons)}
	return layout.NewEngine(opts).Compute(context.Background(), in)
}

func packingStats(l *layout.Layout) telemetry.PackingStats {
	positions := make([]r3.Vec, len(l.Nucleons))
	for i, n := range l.Nucleons {
		positions[i] = n.Position
	}
	return telemetry.ComputePackingStats(positions, l.SphereRadius, l.ContainerRadius)
}

// drawNucleus draws an orthographic view down -Z, far spheres first and
// darkened with depth.
func drawNucleus(l *layout.Layout, x, y, size int32) {
	extent := l.ContainerRadius
	if extent <= 0 {
		extent = 1
	}
	scale := float64(size) / (2 * extent)
	cx := float64(x) + float64(size)/2
	cy := float64(y) + float64(size)/2

	rl.DrawCircleLines(int32(cx), int32(cy), float32(extent*scale), rl.LightGray)

	nucleons := slices.Clone(l.Nucleons)
	slices.SortFunc(nucleons, func(a, b components.Nucleon) int {
		switch {
		case a.Position.Z < b.Position.Z:
			return -1
		case a.Position.Z > b.Position.Z:
			return 1
		}
		return 0
	})

	for _, n := range nucleons {
		shade := 0.55 + 0.45*(n.Position.Z/extent+1)/2
		c := darken(n.Color, shade)
		if n.Kind == components.KindNeutron {
			c = darken(color.RGBA{R: 150, G: 150, B: 160, A: 255}, shade)
		}
		px := int32(cx + n.Position.X*scale)
		py := int32(cy - n.Position.Y*scale)
		r := float32(l.SphereRadius * scale)
		rl.DrawCircle(px, py, r, c)
		rl.DrawCircleLines(px, py, r, rl.DarkGray)
	}
}

func darken(c color.RGBA, f float64) color.RGBA {
	f = math.Max(0, math.Min(1, f))
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
