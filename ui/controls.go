package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/atom/layout"
)

// Preset is a named set of atom inputs offered as a button.
type Preset struct {
	Name   string
	Inputs layout.Inputs
}

// DefaultPresets are the element buttons in the inputs panel.
var DefaultPresets = []Preset{
	{"H", layout.Inputs{AtomicNumber: 1, AtomicMass: 1.008}},
	{"He", layout.Inputs{AtomicNumber: 2, AtomicMass: 4.0026}},
	{"C", layout.Inputs{AtomicNumber: 6, AtomicMass: 12.011}},
	{"O", layout.Inputs{AtomicNumber: 8, AtomicMass: 15.999}},
	{"Na", layout.Inputs{AtomicNumber: 11, AtomicMass: 22.9898}},
	{"Fe", layout.Inputs{AtomicNumber: 26, AtomicMass: 55.845}},
	{"Au", layout.Inputs{AtomicNumber: 79, AtomicMass: 196.97}},
	{"U", layout.Inputs{AtomicNumber: 92, AtomicMass: 238.03}},
}

// Slider ranges for the inputs panel
const (
	MaxAtomicNumber = 118
	MaxAtomicMass   = 300
	MaxCharge       = 10
)

// InputsPanel renders the right-side panel with sliders for the atom inputs.
type InputsPanel struct {
	renderer *Renderer
	width    int32
	visible  bool
	presets  []Preset
}

// NewInputsPanel creates a visible inputs panel.
func NewInputsPanel(width int32) *InputsPanel {
	return &InputsPanel{
		renderer: NewRenderer(),
		width:    width,
		visible:  true,
		presets:  DefaultPresets,
	}
}

// Toggle switches panel visibility.
func (p *InputsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Bounds returns the panel rectangle, so mouse drags over it can be ignored.
func (p *InputsPanel) Bounds(screenWidth int32) rl.Rectangle {
	if !p.visible {
		return rl.Rectangle{}
	}
	return rl.Rectangle{
		X:      float32(screenWidth - p.width - 10),
		Y:      10,
		Width:  float32(p.width),
		Height: float32(p.height()),
	}
}

func (p *InputsPanel) height() int32 {
	rows := int32((len(p.presets) + 3) / 4)
	return p.renderer.Theme.Padding*2 + 30 + 3*48 + rows*30
}

// Draw renders the panel and returns the inputs after this frame's edits.
// changed reports whether the user moved a slider or picked a preset.
func (p *InputsPanel) Draw(in layout.Inputs, screenWidth int32) (out layout.Inputs, changed bool) {
	if !p.visible {
		return in, false
	}

	r := p.renderer
	bounds := p.Bounds(screenWidth)
	r.DrawPanel(int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height))

	x := bounds.X + float32(r.Theme.Padding)
	y := int32(bounds.Y) + r.Theme.Padding
	sliderWidth := float32(p.width - 2*r.Theme.Padding - 60)
	y = r.DrawSectionHeader(int32(x), y, "Atom")

	out = in
	slider := func(label, value string, v, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(value, int32(x+sliderWidth+10), y+18, r.Theme.FontSize, r.Theme.ValueColor)
		got := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y + 18), Width: sliderWidth, Height: 18},
			"", "",
			v, lo, hi,
		)
		y += 48
		return got
	}

	z := slider("Atomic number", fmt.Sprintf("%.0f", in.AtomicNumber),
		float32(in.AtomicNumber), 0, MaxAtomicNumber)
	out.AtomicNumber = math.Round(float64(z))

	a := slider("Atomic mass", fmt.Sprintf("%.2f", in.AtomicMass),
		float32(in.AtomicMass), 0, MaxAtomicMass)
	out.AtomicMass = SnapMass(float64(a), in.AtomicMass)

	c := slider("Charge", fmt.Sprintf("%+.0f", in.Charge),
		float32(in.Charge), -MaxCharge, MaxCharge)
	out.Charge = math.Round(float64(c))

	// Preset buttons, four per row
	bw := (float32(p.width) - 2*float32(r.Theme.Padding) - 3*6) / 4
	for i, preset := range p.presets {
		col, row := i%4, i/4
		rect := rl.Rectangle{
			X:      x + float32(col)*(bw+6),
			Y:      float32(y + int32(row)*30),
			Width:  bw,
			Height: 24,
		}
		if gui.Button(rect, preset.Name) {
			out = preset.Inputs
			out.Charge = in.Charge
		}
	}

	return out, out != in
}

// SnapMass keeps prev when the slider value only differs by float32 rounding,
// so untouched sliders do not resubmit fractional masses.
func SnapMass(slider, prev float64) float64 {
	if math.Abs(slider-prev) < 1e-3 {
		return prev
	}
	return math.Round(slider*100) / 100
}
