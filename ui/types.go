// Package ui draws the viewer's 2D overlay: the HUD, the perf panel and the
// atom inputs panel.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	MutedColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	FontSize      int32
	HeaderSize    int32
}

// DefaultTheme returns the default UI theme, tuned for the dark scene background.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 28, G: 30, B: 44, A: 230},
		PanelBorder:   rl.Color{R: 70, G: 74, B: 96, A: 255},
		SectionHeader: rl.Color{R: 0, G: 215, B: 241, A: 255},
		LabelColor:    rl.LightGray,
		ValueColor:    rl.White,
		MutedColor:    rl.Gray,
		BarBg:         rl.Color{R: 40, G: 42, B: 56, A: 255},
		BarFill:       rl.Color{R: 0, G: 170, B: 200, A: 255},
		Padding:       10,
		LineHeight:    18,
		LabelWidth:    90,
		BarHeight:     10,
		FontSize:      14,
		HeaderSize:    16,
	}
}
