package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal bar that maps the mouse position to a value in [Min, Max].
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	Format   string // printf verb for the value readout
}

// NewSlider creates a slider whose value is clamped to [min, max].
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label:  label,
		Min:    min,
		Max:    max,
		Value:  clampValue(value, min, max),
		X:      x,
		Y:      y,
		W:      w,
		H:      12,
		Format: "%.1f",
	}
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if contains(s.X, s.Y, s.W, s.H, float64(mx), float64(my)) {
		s.Value = valueAt(float64(mx), s.X, s.W, s.Min, s.Max)
	}
}

// Draw renders the bar and the value readout on its right.
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(s.Format, s.Value), int(s.X+s.W)-40, int(s.Y)-15)
}

// Ratio is the filled share of the bar.
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Height() float64 {
	return s.H + 25
}

func (s *Slider) moveTo(y float64) {
	s.Y = y
}

// valueAt converts a cursor x coordinate over a bar into a value.
func valueAt(mx, x, w, min, max float64) float64 {
	if w <= 0 {
		return min
	}
	return clampValue(min+(mx-x)/w*(max-min), min, max)
}

func clampValue(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func contains(x, y, w, h, px, py float64) bool {
	return px >= x && px <= x+w && py >= y && py <= y+h
}
