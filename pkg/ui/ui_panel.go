// Package ui holds the small immediate-mode widgets drawn over the fleet viewer.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	moveTo(y float64)
}

type row struct {
	label  string
	widget Widget // nil for a section header
}

// Panel stacks labelled widgets under section headers, top to bottom.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string

	rows []row

	BGColor     color.RGBA
	BorderColor color.RGBA
	HeaderColor color.RGBA
}

const (
	titleHeight  = 25.0
	headerHeight = 22.0
	labelHeight  = 15.0
	margin       = 10.0
)

// NewPanel creates an empty panel.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		HeaderColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection starts a new titled group.
func (p *Panel) AddSection(title string) {
	p.rows = append(p.rows, row{label: title})
}

// AddSlider appends a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.Width-2*margin, label, min, max, value)
	p.add(label, s)
	return s
}

// AddCheckbox appends a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(label, c)
	return c
}

// AddButton appends a button running onClick to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, label, onClick)
	p.add(label, b)
	return b
}

func (p *Panel) add(label string, w Widget) {
	p.rows = append(p.rows, row{label: label, widget: w})
	p.layout()
}

// layout assigns every widget its y coordinate.
func (p *Panel) layout() {
	y := p.Y + titleHeight
	for _, r := range p.rows {
		if r.widget == nil {
			y += headerHeight
			continue
		}
		r.widget.moveTo(y + labelSpace(r.widget))
		y += labelSpace(r.widget) + r.widget.Height()
	}
}

// labelSpace is the room above a widget for its label. Checkboxes carry theirs
// on the right and buttons inside.
func labelSpace(w Widget) float64 {
	switch w.(type) {
	case *Checkbox, *Button:
		return 0
	}
	return labelHeight
}

// ContentHeight is the height needed to show every row.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, r := range p.rows {
		if r.widget == nil {
			h += headerHeight
			continue
		}
		h += labelSpace(r.widget) + r.widget.Height()
	}
	return h
}

// Update handles input for all widgets
func (p *Panel) Update() {
	for _, r := range p.rows {
		if r.widget != nil {
			r.widget.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight
	for _, r := range p.rows {
		if r.widget == nil {
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 18, p.HeaderColor, true)
			ebitenutil.DebugPrintAt(screen, r.label, int(p.X+margin), int(y+2))
			y += headerHeight
			continue
		}
		switch w := r.widget.(type) {
		case *Checkbox:
			// label sits right of the box
			ebitenutil.DebugPrintAt(screen, r.label, int(w.X+w.Size+8), int(w.Y))
		case *Button:
		default:
			ebitenutil.DebugPrintAt(screen, r.label, int(p.X+margin), int(y))
		}
		r.widget.Draw(screen)
		y += labelSpace(r.widget) + r.widget.Height()
	}
}
