package ui

import (
	"fmt"
	"image/color"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/atom/telemetry"
)

// HUDData holds everything the HUD shows about the displayed atom.
type HUDData struct {
	Title     string
	Protons   int
	Neutrons  int
	Electrons int
	Shells    []int // electrons per shell, innermost first

	ProtonColor   color.RGBA
	NeutronColor  color.RGBA
	ElectronColor color.RGBA

	Tick      int
	FPS       int32
	Paused    bool
	Computing bool

	CacheHits   int
	CacheMisses int
}

// HUD renders the top-left heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)

	rl.DrawText(data.Title, x, y, 20, r.Theme.ValueColor)
	y += 28

	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Protons: %d", data.Protons), data.ProtonColor)
	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Neutrons: %d", data.Neutrons), data.NeutronColor)
	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Electrons: %d", data.Electrons), data.ElectronColor)
	y = r.DrawLabelValue(x, y, "Shells", FormatShells(data.Shells))

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Cache: %d/%d", data.Tick, data.FPS, data.CacheHits, data.CacheHits+data.CacheMisses),
		x, y+4, r.Theme.FontSize, r.Theme.MutedColor,
	)
	y += r.Theme.LineHeight + 4

	switch {
	case data.Computing:
		rl.DrawText("Computing layout...", x, y, r.Theme.FontSize, rl.Yellow)
	case data.Paused:
		rl.DrawText("PAUSED", x, y, r.Theme.FontSize, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, h.renderer.Theme.MutedColor)
}

// FormatShells renders shell fills as "2 8 1", or "-" when there are none.
func FormatShells(fills []int) string {
	if len(fills) == 0 {
		return "-"
	}
	parts := make([]string, len(fills))
	for i, n := range fills {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}

// PerfPanel renders the per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	width    int32
}

// NewPerfPanel creates a perf panel of the given width.
func NewPerfPanel(width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), width: width}
}

// Draw renders stats anchored to the bottom-left corner above the legend.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, screenHeight int32) {
	r := p.renderer
	phases := []string{
		telemetry.PhaseLoad,
		telemetry.PhaseElectrons,
		telemetry.PhaseWobble,
		telemetry.PhaseFrame,
	}

	height := r.Theme.Padding*2 + r.Theme.LineHeight*int32(len(phases)+2)
	x := int32(10)
	y := screenHeight - 40 - height
	r.DrawPanel(x, y, p.width, height)

	x += r.Theme.Padding
	y += r.Theme.Padding
	y = r.DrawSectionHeader(x, y, "Tick timing")
	y = r.DrawLabelValue(x, y, "avg", fmt.Sprintf("%d us", stats.AvgTickDuration.Microseconds()))
	for _, phase := range phases {
		y = r.DrawBar(x, y, phase, float32(stats.PhasePct[phase]/100), p.width-2*r.Theme.Padding)
	}
}
