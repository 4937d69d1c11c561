package ui

import (
	"math"
	"testing"
)

func TestValueAt(t *testing.T) {
	tests := []struct {
		name string
		mx   float64
		want float64
	}{
		{"Left edge", 10, 1},
		{"Middle", 60, 5.5},
		{"Right edge", 110, 10},
		{"Past the right edge", 500, 10},
		{"Before the left edge", -20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueAt(tt.mx, 10, 100, 1, 10); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("valueAt(%v) = %v; want %v", tt.mx, got, tt.want)
			}
		})
	}
	if got := valueAt(5, 0, 0, 2, 3); got != 2 {
		t.Errorf("valueAt over a zero-width bar = %v; want min", got)
	}
}

func TestSlider_ClampAndRatio(t *testing.T) {
	s := NewSlider(0, 0, 100, "zoom", 2, 12, 50)
	if s.Value != 12 {
		t.Errorf("initial value = %v; want clamped to 12", s.Value)
	}
	s.Value = 7
	if got := s.Ratio(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Ratio() = %v; want 0.5", got)
	}
	flat := NewSlider(0, 0, 100, "flat", 3, 3, 3)
	if got := flat.Ratio(); got != 0 {
		t.Errorf("Ratio() of an empty range = %v; want 0", got)
	}
}

func TestContains(t *testing.T) {
	if !contains(10, 10, 20, 5, 15, 12) {
		t.Error("point inside the rectangle not contained")
	}
	if contains(10, 10, 20, 5, 31, 12) {
		t.Error("point right of the rectangle contained")
	}
	if !contains(10, 10, 20, 5, 30, 15) {
		t.Error("bottom-right corner should be contained")
	}
}

func TestCheckbox_ToggleOncePerPress(t *testing.T) {
	c := NewCheckbox(0, 0, "sphere", false)
	clicked := false
	for i := 0; i < 5; i++ {
		clicked = c.toggleOnce(clicked)
	}
	if !c.Value {
		t.Error("a held press should toggle exactly once")
	}
	clicked = false
	c.toggleOnce(clicked)
	if c.Value {
		t.Error("a second press should toggle back")
	}
}

func TestPanel_Layout(t *testing.T) {
	p := NewPanel(10, 20, 200, 400, "View")
	p.AddSection("Display")
	show := p.AddCheckbox("Show sphere", true)
	zoom := p.AddSlider("Zoom", 1, 20, 5)

	wantShowY := 20 + titleHeight + headerHeight
	if show.Y != wantShowY {
		t.Errorf("checkbox Y = %v; want %v", show.Y, wantShowY)
	}
	wantZoomY := wantShowY + show.Height() + labelHeight
	if zoom.Y != wantZoomY {
		t.Errorf("slider Y = %v; want %v", zoom.Y, wantZoomY)
	}
	if zoom.X != 20 || zoom.W != 180 {
		t.Errorf("slider geometry = x %v w %v; want x 20 w 180", zoom.X, zoom.W)
	}

	wantHeight := titleHeight + headerHeight + show.Height() + labelHeight + zoom.Height()
	if got := p.ContentHeight(); got != wantHeight {
		t.Errorf("ContentHeight() = %v; want %v", got, wantHeight)
	}
}

func TestButton_FiresOncePerPress(t *testing.T) {
	p := NewPanel(0, 0, 200, 300, "View")
	calls := 0
	b := p.AddButton("Reset", func() { calls++ })
	if b.W != 180 || b.Y != titleHeight {
		t.Errorf("button geometry = w %v y %v", b.W, b.Y)
	}

	for i := 0; i < 4; i++ {
		b.press(true)
	}
	b.press(false)
	b.press(true)
	if calls != 2 {
		t.Errorf("OnClick ran %d times over two presses; want 2", calls)
	}

	silent := NewButton(0, 0, 50, "noop", nil)
	silent.press(true)
}
