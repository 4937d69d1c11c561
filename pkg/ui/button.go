package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per press. Its label is drawn inside it.
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	OnClick func()

	clicked bool

	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		W:          width,
		H:          20,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update() {
	mx, my := ebiten.CursorPosition()
	isOver := contains(b.X, b.Y, b.W, b.H, float64(mx), float64(my))
	b.press(isOver && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// press fires OnClick on the first frame the button is held down.
func (b *Button) press(down bool) {
	if !down {
		b.clicked = false
		return
	}
	if !b.clicked && b.OnClick != nil {
		b.OnClick()
	}
	b.clicked = true
}

func (b *Button) Draw(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	bg := b.BGColor
	if contains(b.X, b.Y, b.W, b.H, float64(mx), float64(my)) {
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+3))
}

func (b *Button) Height() float64 {
	return b.H + 8
}

func (b *Button) moveTo(y float64) {
	b.Y = y
}
