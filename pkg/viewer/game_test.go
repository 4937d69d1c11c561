package viewer

import (
	"image/color"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/uav"
)

func TestProjection_ToScreen(t *testing.T) {
	side := projection{
		x: 100, w: 400, h: 300,
		originX: 300, originY: 260,
		scale: 5,
		axes:  func(v geometry.Vector3D) (float64, float64) { return v.X, v.Z },
	}

	x, y := side.toScreen(geometry.Vector3D{X: 10, Y: 99, Z: 20})
	if x != 350 || y != 160 {
		t.Errorf("toScreen = (%v, %v); want (350, 160)", x, y)
	}
	if !side.visible(x, y) {
		t.Error("projected point should be visible")
	}

	x, y = side.toScreen(geometry.Vector3D{X: -50})
	if side.visible(x, y) {
		t.Errorf("point at screen (%v, %v) should be left of the view", x, y)
	}
}

func TestStateColor(t *testing.T) {
	full := stateColor(uav.StateOrbit, 1)
	half := stateColor(uav.StateOrbit, 0.5)
	if half.R != full.R/2 || half.G != full.G/2 || half.B != full.B/2 {
		t.Errorf("half intensity %v is not half of %v", half, full)
	}
	if half.A != 255 {
		t.Errorf("alpha = %d; want opaque", half.A)
	}
	if got := stateColor(uav.StateIdle, 3); got != stateColor(uav.StateIdle, 1) {
		t.Errorf("intensity above 1 should saturate, got %v", got)
	}
	if got := stateColor(uav.StateAscent, -1); got != (color.RGBA{A: 255}) {
		t.Errorf("negative intensity should be black, got %v", got)
	}
	if stateColor(uav.StateAscent, 1) == stateColor(uav.StateOrbit, 1) {
		t.Error("ascent and orbit should not share a color")
	}
}

func TestFormatCounts(t *testing.T) {
	if got := formatCounts(nil); got != "no sample yet" {
		t.Errorf("formatCounts(nil) = %q", got)
	}
	got := formatCounts(map[string]int{"orbit": 3, "idle": 2})
	if got != "idle:2 orbit:3" {
		t.Errorf("formatCounts = %q; want states in transition order", got)
	}
	if strings.Contains(got, "ascent") {
		t.Error("absent states should not be listed")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}
