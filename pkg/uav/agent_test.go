package uav

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

func TestNewAgent(t *testing.T) {
	a := newTestAgent(t, geometry.Vector3D{X: 1, Y: 2})
	b := newTestAgent(t, geometry.Vector3D{X: 3, Y: 4}, WithName("bravo"))

	if a.ID() == b.ID() {
		t.Errorf("agents share ID %d", a.ID())
	}
	if b.Name() != "bravo" {
		t.Errorf("Name() = %q; want bravo", b.Name())
	}
	if a.Name() == "" {
		t.Error("default name is empty")
	}
	if got := a.FlightState(); got != StateIdle {
		t.Errorf("new agent state = %v; want idle", got)
	}
	if a.IsRunning() {
		t.Error("new agent reports running")
	}
	if got := a.Position(); !got.Eq(geometry.Vector3D{X: 1, Y: 2}) {
		t.Errorf("Position() = %v; want spawn position", got)
	}
}

func TestNewAgent_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.Mass = 0
	if _, err := NewAgent(geometry.Zero, WithParams(p)); !errors.Is(err, ErrInvalidMass) {
		t.Errorf("NewAgent with zero mass error = %v; want ErrInvalidMass", err)
	}
	if _, err := NewAgent(geometry.Vector3D{X: math.NaN()}); err == nil {
		t.Error("NewAgent accepted a NaN spawn position")
	}
}

func TestAgent_SameSeedSameFlight(t *testing.T) {
	p := DefaultParams()
	p.IdleDuration = 0
	a := newTestAgent(t, geometry.Zero, WithParams(p), WithSeed(99))
	b := newTestAgent(t, geometry.Zero, WithParams(p), WithSeed(99))
	placeInOrbit(a, geometry.Vector3D{X: 10, Z: 50})
	placeInOrbit(b, geometry.Vector3D{X: 10, Z: 50})

	for i := 0; i < 500; i++ {
		_ = a.Step(tick)
		_ = b.Step(tick)
	}
	if !a.Position().Eq(b.Position()) {
		t.Errorf("same seed diverged: %v vs %v", a.Position(), b.Position())
	}
}

func TestAgent_StartStop(t *testing.T) {
	a := newTestAgent(t, geometry.Zero)

	// Stop before Start is a no-op.
	a.Stop()

	a.Start()
	a.Start()
	if !a.IsRunning() {
		t.Fatal("agent not running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.MissionTime() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if a.MissionTime() == 0 {
		t.Fatal("control loop never ticked")
	}

	begin := time.Now()
	a.Stop()
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Errorf("Stop took %v", elapsed)
	}
	if a.IsRunning() {
		t.Error("agent still running after Stop")
	}

	frozen := a.MissionTime()
	time.Sleep(50 * time.Millisecond)
	if got := a.MissionTime(); got != frozen {
		t.Errorf("mission time advanced after Stop: %v -> %v", frozen, got)
	}

	a.Stop()
	if err := a.StopContext(context.Background()); err != nil {
		t.Errorf("StopContext on stopped agent = %v; want nil", err)
	}

	// A stopped agent can be started again.
	a.Start()
	if !a.IsRunning() {
		t.Error("agent not running after restart")
	}
	a.Stop()
}

func TestAgent_StopContextExpired(t *testing.T) {
	a := newTestAgent(t, geometry.Zero)
	a.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.StopContext(ctx); err != nil && !errors.Is(err, ErrStopTimeout) {
		t.Errorf("StopContext with cancelled ctx = %v; want nil or ErrStopTimeout", err)
	}

	// Whatever happened above, a plain Stop joins the goroutine.
	a.Stop()
	if a.IsRunning() {
		t.Error("agent still running after Stop")
	}
}

func TestAgent_NonFiniteStopsLoop(t *testing.T) {
	a := newTestAgent(t, geometry.Vector3D{Z: 10})
	a.mu.Lock()
	a.body.Position.X = math.NaN()
	a.mu.Unlock()

	if err := a.Step(tick); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Step on NaN position = %v; want ErrNonFinite", err)
	}

	a.Start()
	deadline := time.Now().Add(2 * time.Second)
	for a.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if a.IsRunning() {
		t.Error("faulted agent kept running")
	}
	a.Stop()
}

func TestAgent_SetRoster(t *testing.T) {
	a := newTestAgent(t, geometry.Zero)
	if err := a.SetRoster(StaticRoster{a}); err != nil {
		t.Errorf("SetRoster on stopped agent = %v", err)
	}
	a.Start()
	defer a.Stop()
	if err := a.SetRoster(nil); !errors.Is(err, ErrRunning) {
		t.Errorf("SetRoster on running agent = %v; want ErrRunning", err)
	}
}

func TestAgent_Snapshot(t *testing.T) {
	a := newTestAgent(t, geometry.Vector3D{X: 2, Y: 3, Z: 0}, WithName("snap"))
	for i := 0; i < 10; i++ {
		_ = a.Step(tick)
	}
	s := a.Snapshot()
	if s.Name != "snap" || s.ID != a.ID() {
		t.Errorf("snapshot identity = %q/%d", s.Name, s.ID)
	}
	if !s.Position.Eq(a.Position()) || s.State != a.FlightState() {
		t.Errorf("snapshot %+v disagrees with accessors", s)
	}
	if math.Abs(s.MissionTime-0.1) > 1e-9 {
		t.Errorf("MissionTime = %v; want 0.1", s.MissionTime)
	}
	if s.ColorIntensity != a.ColorIntensity() {
		t.Errorf("ColorIntensity = %v; want %v", s.ColorIntensity, a.ColorIntensity())
	}
}

// TestAgent_ConcurrentAccessors is meant for go test -race.
func TestAgent_ConcurrentAccessors(t *testing.T) {
	p := DefaultParams()
	p.IdleDuration = 200 * time.Millisecond

	agents := make(StaticRoster, 0, 10)
	for i := 0; i < 10; i++ {
		// tight column so collision passes run from the start
		pos := geometry.Vector3D{X: float64(i%5) * 0.15, Y: float64(i/5) * 0.15}
		agents = append(agents, newTestAgent(t, pos, WithParams(p), WithRoster(nil)))
	}
	for _, a := range agents {
		if err := a.SetRoster(agents); err != nil {
			t.Fatal(err)
		}
	}
	for _, a := range agents {
		a.Start()
	}

	var (
		wg       sync.WaitGroup
		stop     = make(chan struct{})
		reads    atomic.Int64
		failures atomic.Int64
	)
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, a := range agents {
					s := a.Snapshot()
					if !s.Position.IsFinite() || !s.Velocity.IsFinite() || !s.Acceleration.IsFinite() {
						failures.Add(1)
					}
					if s.Position.Z < 0 || s.ColorIntensity < 0.5-1e-12 || s.ColorIntensity > 1+1e-12 {
						failures.Add(1)
					}
					_ = a.Position()
					_ = a.Velocity()
					_ = a.FlightState()
					_ = a.HasCompletedOrbit()
					reads.Add(1)
				}
			}
		}()
	}

	time.Sleep(1500 * time.Millisecond)
	close(stop)
	wg.Wait()

	for _, a := range agents {
		a.Stop()
		if a.IsRunning() {
			t.Errorf("%s still running after Stop", a.Name())
		}
	}
	if n := failures.Load(); n > 0 {
		t.Errorf("%d inconsistent snapshots observed", n)
	}
	if reads.Load() == 0 {
		t.Error("readers never sampled the fleet")
	}
}
