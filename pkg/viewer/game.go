// Package viewer draws the fleet with ebiten: a top view and a side view of the
// mission area, fed by the monitor's snapshot channel.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/ui"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/uav"
)

const panelWidth = 230.0

var (
	background  = color.RGBA{R: 12, G: 14, B: 28, A: 255}
	gridColor   = color.RGBA{R: 40, G: 60, B: 40, A: 255}
	sphereColor = color.RGBA{R: 90, G: 90, B: 160, A: 255}
	velColor    = color.RGBA{R: 255, G: 255, B: 255, A: 160}
)

type Game struct {
	ctx        context.Context
	cfg        *simulation.Config
	monitor    *simulation.Monitor
	snapshotCh <-chan *simulation.FleetSnapshot
	lastState  *simulation.FleetSnapshot

	// UI Controls
	panel              *ui.Panel
	widgetZoom         *ui.Slider
	widgetShowSphere   *ui.Checkbox
	widgetShowVelocity *ui.Checkbox
	widgetShowLabels   *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// NewGame wires the viewer to a running monitor and its snapshot channel.
func NewGame(ctx context.Context, cfg *simulation.Config, monitor *simulation.Monitor, snapshotCh <-chan *simulation.FleetSnapshot) *Game {
	panel := ui.NewPanel(10, 10, panelWidth-20, cfg.WorldHeight-20, "UAV fleet")

	panel.AddSection("Display")
	zoom := panel.AddSlider("Zoom (px/m)", 1, 20, cfg.PixelsPerMeter)
	showSphere := panel.AddCheckbox("Sphere [S]", true).WithKey(ebiten.KeyS)
	showVelocity := panel.AddCheckbox("Velocity [V]", true).WithKey(ebiten.KeyV)
	showLabels := panel.AddCheckbox("Names [N]", false).WithKey(ebiten.KeyN)
	panel.AddButton("Reset zoom", func() { zoom.Value = cfg.PixelsPerMeter })

	return &Game{
		ctx:                ctx,
		cfg:                cfg,
		monitor:            monitor,
		snapshotCh:         snapshotCh,
		lastState:          &simulation.FleetSnapshot{}, // Avoid nil pointer
		panel:              panel,
		widgetZoom:         zoom,
		widgetShowSphere:   showSphere,
		widgetShowVelocity: showVelocity,
		widgetShowLabels:   showLabels,
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// 1. Update UI Panel
	g.panel.Update()

	// 2. Keep only the freshest frame
Loop:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Loop
		}
	}

	// 3. Ask for the next one
	if g.monitor != nil {
		if err := g.monitor.Sample(g.ctx); err != nil {
			return fmt.Errorf("viewer: %w", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)

	top, side := g.views(float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy()))
	for _, v := range []projection{top, side} {
		g.drawView(screen, v)
	}

	g.panel.Draw(screen)
	g.drawStats(screen)
}

// views splits the area right of the panel into the top and side projections.
func (g *Game) views(screenW, screenH float64) (top, side projection) {
	scale := g.widgetZoom.Value
	areaW := (screenW - panelWidth) / 2
	top = projection{
		title:   "TOP (x, y)",
		x:       panelWidth,
		w:       areaW,
		h:       screenH,
		originX: panelWidth + areaW/2,
		originY: screenH / 2,
		scale:   scale,
		axes:    func(v geometry.Vector3D) (float64, float64) { return v.X, v.Y },
	}
	side = projection{
		title:   "SIDE (x, z)",
		x:       panelWidth + areaW,
		w:       areaW,
		h:       screenH,
		originX: panelWidth + areaW + areaW/2,
		originY: screenH - 40,
		scale:   scale,
		axes:    func(v geometry.Vector3D) (float64, float64) { return v.X, v.Z },
	}
	return top, side
}

func (g *Game) drawView(screen *ebiten.Image, p projection) {
	vector.StrokeRect(screen, float32(p.x), 0, float32(p.w), float32(p.h), 1, gridColor, false)
	ebitenutil.DebugPrintAt(screen, p.title, int(p.x+8), 8)

	// ground line in the side view, origin cross in the top view
	ox, oy := p.toScreen(geometry.Zero)
	vector.StrokeLine(screen, float32(p.x), float32(oy), float32(p.x+p.w), float32(oy), 1, gridColor, false)
	vector.StrokeLine(screen, float32(ox), 0, float32(ox), float32(p.h), 1, gridColor, false)

	if g.widgetShowSphere.Value {
		cx, cy := p.toScreen(g.cfg.SphereCenter)
		vector.StrokeCircle(screen, float32(cx), float32(cy), float32(g.cfg.SphereRadius*p.scale), 1, sphereColor, true)
	}

	for _, a := range g.lastState.Agents {
		x, y := p.toScreen(a.Position)
		if !p.visible(x, y) {
			continue
		}
		radius := max(3, g.cfg.BoundingRadius*p.scale)
		vector.FillCircle(screen, float32(x), float32(y), float32(radius), stateColor(a.State, a.ColorIntensity), true)

		if g.widgetShowVelocity.Value {
			tx, ty := p.toScreen(a.Position.Add(a.Velocity))
			vector.StrokeLine(screen, float32(x), float32(y), float32(tx), float32(ty), 1, velColor, true)
		}
		if g.widgetShowLabels.Value {
			ebitenutil.DebugPrintAt(screen, a.Name, int(x)+5, int(y)+5)
		}
	}
}

func (g *Game) drawStats(screen *ebiten.Image) {
	s := g.lastState
	msg := fmt.Sprintf("run %s  #%d\n%s\ncollisions: %d  close pairs: %d\norbits done: %v\n\nFPS: %.1f TPS: %.1f\nUpdate: %.2fms Draw: %.2fms",
		shortID(s.RunID), s.Sequence,
		formatCounts(s.StateCounts),
		s.Collisions, s.ProximityAlerts,
		s.AllOrbitsCompleted,
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 20, int(g.panel.Y+g.panel.ContentHeight()+20))
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }

// projection maps world meters to screen pixels for one view.
type projection struct {
	title            string
	x, w, h          float64 // screen area
	originX, originY float64 // screen position of the world origin
	scale            float64 // pixels per meter
	axes             func(geometry.Vector3D) (float64, float64)
}

// toScreen projects v; screen y grows downwards so world up is flipped.
func (p projection) toScreen(v geometry.Vector3D) (float64, float64) {
	a, b := p.axes(v)
	return p.originX + a*p.scale, p.originY - b*p.scale
}

func (p projection) visible(x, y float64) bool {
	return x >= p.x && x <= p.x+p.w && y >= 0 && y <= p.h
}

// stateColor is the base color of a flight state, brightened by the pulse intensity.
func stateColor(s uav.FlightState, intensity float64) color.RGBA {
	var base color.RGBA
	switch s {
	case uav.StateIdle:
		base = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	case uav.StateAscent:
		base = color.RGBA{R: 255, G: 200, B: 40, A: 255}
	case uav.StateOrbit:
		base = color.RGBA{R: 40, G: 220, B: 255, A: 255}
	case uav.StateFinished:
		base = color.RGBA{R: 60, G: 255, B: 90, A: 255}
	default:
		base = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	}
	k := min(max(intensity, 0), 1)
	return color.RGBA{
		R: uint8(float64(base.R) * k),
		G: uint8(float64(base.G) * k),
		B: uint8(float64(base.B) * k),
		A: base.A,
	}
}

// formatCounts renders state counts in transition order.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "no sample yet"
	}
	parts := make([]string, 0, len(counts))
	for _, s := range uav.AllStates {
		if n, ok := counts[s.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", s, n))
		}
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
