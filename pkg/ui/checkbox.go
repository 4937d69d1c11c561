package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a boolean toggle, flipped by a click or by its optional keyboard shortcut.
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64

	// Key toggles the checkbox when pressed. Zero means no shortcut.
	Key    ebiten.Key
	hasKey bool

	clicked bool // debounce: one toggle per press
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  14,
	}
}

// WithKey binds a keyboard shortcut and returns the checkbox.
func (c *Checkbox) WithKey(k ebiten.Key) *Checkbox {
	c.Key = k
	c.hasKey = true
	return c
}

// Update checks for mouse and keyboard interaction
func (c *Checkbox) Update() {
	if c.hasKey && inpututil.IsKeyJustPressed(c.Key) {
		c.Value = !c.Value
	}

	mx, my := ebiten.CursorPosition()
	isOver := contains(c.X, c.Y, c.Size, c.Size, float64(mx), float64(my))
	if isOver && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		c.clicked = c.toggleOnce(c.clicked)
	} else {
		c.clicked = false
	}
}

// toggleOnce flips the value on the first frame of a press only.
func (c *Checkbox) toggleOnce(alreadyClicked bool) bool {
	if !alreadyClicked {
		c.Value = !c.Value
	}
	return true
}

// Draw renders the checkbox
func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+3), float32(c.Y+3),
			float32(c.Size-6), float32(c.Size-6),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}
}

func (c *Checkbox) Height() float64 {
	return c.Size + 8
}

func (c *Checkbox) moveTo(y float64) {
	c.Y = y
}
