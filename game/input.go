package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Mouse sensitivity for orbiting, in radians per pixel
const orbitSpeed = 0.005

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.showOrbits = !g.showOrbits
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.showLabels = !g.showLabels
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.inputsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if _, err := g.SaveSnapshot(); err != nil {
			slog.Error("failed to save snapshot", "error", err)
		}
	}

	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(float64(w), float64(h))
}

// handleCameraInput orbits with the left mouse button, pans with the right one
// and zooms with the wheel or +/-. Drags starting over the inputs panel belong to it.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := rl.CheckCollisionPointRec(mouse, g.inputsPanel.Bounds(int32(g.screenWidth)))

	if !overPanel {
		delta := rl.GetMouseDelta()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			g.camera.Orbit(-float64(delta.X)*orbitSpeed, float64(delta.Y)*orbitSpeed)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			g.camera.Pan(float64(delta.X), float64(delta.Y))
		}

		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			g.camera.ZoomBy(1 + float64(wheel)*0.1)
		}
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
