package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/uav"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const monitorName = "fleet-monitor"

// FleetSnapshot is one sampled frame of the whole fleet.
type FleetSnapshot struct {
	RunID       string         `json:"runId"`
	Sequence    uint64         `json:"sequence"`
	TakenAt     time.Time      `json:"takenAt"`
	Agents      []uav.Snapshot `json:"agents"`
	StateCounts map[string]int `json:"stateCounts"`
	Collisions  uint64         `json:"collisions"`

	// ProximityAlerts counts pairs closer than the configured proximity radius.
	// MinSeparation is the closest of those pairs, 0 when there is none.
	ProximityAlerts int     `json:"proximityAlerts"`
	MinSeparation   float64 `json:"minSeparation"`

	AllOrbitsCompleted bool `json:"allOrbitsCompleted"`
}

type gridKey struct {
	x, y, z int
}

// MonitorActor samples the fleet on every timestamp it receives. It never
// mutates an agent: it only reads snapshots, builds the telemetry frame and
// hands it to the viewer channel without blocking.
type MonitorActor struct {
	fleet      *Fleet
	snapshotCh chan<- *FleetSnapshot

	// Spatial hashing of the last frame, cell -> indexes into the frame's agents
	grid            map[gridKey][]int
	proximityRadius float64

	latest   atomic.Pointer[FleetSnapshot]
	sequence uint64

	// --- Benchmark Stats ---
	sampleCount int
	lastLogTime time.Time
}

// NewMonitorActor creates the monitor of fleet. snapshotCh may be nil.
func NewMonitorActor(fleet *Fleet, snapshotCh chan<- *FleetSnapshot) *MonitorActor {
	return &MonitorActor{
		fleet:           fleet,
		snapshotCh:      snapshotCh,
		grid:            make(map[gridKey][]int),
		proximityRadius: fleet.Config().ProximityRadius,
		lastLogTime:     time.Now(),
	}
}

func (m *MonitorActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Monitor is attaching to fleet %s...", m.fleet.RunID)
	return nil
}

func (m *MonitorActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("Monitor started, watching %d agents", m.fleet.Len())

	// 1. Sampling tick
	case *timestamppb.Timestamp:
		snap := m.sample(msg.AsTime())
		m.logBenchmarks(ctx, snap)
		m.pushSnapshot(snap)

	// 2. Summary request
	case *emptypb.Empty:
		summary, err := summarize(m.latest.Load())
		if err != nil {
			ctx.Logger().Errorf("Monitor summary: %v", err)
			ctx.Unhandled()
			return
		}
		ctx.Response(summary)

	default:
		ctx.Unhandled()
	}
}

func (m *MonitorActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Monitor is shutdown...")
	return nil
}

// Latest returns the most recent frame, nil before the first sample.
// It is safe to call from any goroutine.
func (m *MonitorActor) Latest() *FleetSnapshot {
	return m.latest.Load()
}

func (m *MonitorActor) sample(at time.Time) *FleetSnapshot {
	agents := m.fleet.Snapshots()
	m.sequence++
	snap := &FleetSnapshot{
		RunID:              m.fleet.RunID,
		Sequence:           m.sequence,
		TakenAt:            at,
		Agents:             agents,
		StateCounts:        make(map[string]int, len(uav.AllStates)),
		AllOrbitsCompleted: len(agents) > 0,
	}
	for _, a := range agents {
		snap.StateCounts[a.State.String()]++
		snap.Collisions += a.Collisions
		if !a.OrbitCompleted {
			snap.AllOrbitsCompleted = false
		}
	}

	m.rebuildGrid(agents)
	snap.ProximityAlerts, snap.MinSeparation = m.proximity(agents)

	m.latest.Store(snap)
	m.sampleCount++
	return snap
}

func (m *MonitorActor) logBenchmarks(ctx *actor.ReceiveContext, snap *FleetSnapshot) {
	if time.Since(m.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 SAMPLE RATE: %d/sec | Agents: %d | States: %v | Collisions: %d | Proximity: %d",
			m.sampleCount, len(snap.Agents), snap.StateCounts, snap.Collisions, snap.ProximityAlerts)
		m.sampleCount = 0
		m.lastLogTime = time.Now()
	}
}

func (m *MonitorActor) pushSnapshot(snap *FleetSnapshot) {
	if m.snapshotCh == nil {
		return
	}
	select {
	case m.snapshotCh <- snap:
	default:
		// viewer busy, skip frame
	}
}

func (m *MonitorActor) getCellSize() float64 {
	// Clamp to a minimum of 1m to avoid tiny grids or div by zero
	return math.Max(m.proximityRadius, 1.0)
}

func (m *MonitorActor) getCellIndices(a uav.Snapshot) gridKey {
	cs := m.getCellSize()
	return gridKey{
		x: int(math.Floor(a.Position.X / cs)),
		y: int(math.Floor(a.Position.Y / cs)),
		z: int(math.Floor(a.Position.Z / cs)),
	}
}

func (m *MonitorActor) rebuildGrid(agents []uav.Snapshot) {
	// Keep slice capacity between frames
	for k := range m.grid {
		m.grid[k] = m.grid[k][:0]
	}
	for i, a := range agents {
		key := m.getCellIndices(a)
		m.grid[key] = append(m.grid[key], i)
	}
}

// proximity scans the 3x3x3 cells around each agent and counts every pair once.
func (m *MonitorActor) proximity(agents []uav.Snapshot) (alerts int, minSep float64) {
	if m.proximityRadius <= 0 {
		return 0, 0
	}
	radiusSq := m.proximityRadius * m.proximityRadius
	minSq := math.Inf(1)

	for i, me := range agents {
		c := m.getCellIndices(me)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range m.grid[gridKey{x: c.x + dx, y: c.y + dy, z: c.z + dz}] {
						if j <= i {
							continue
						}
						d := me.Position.DistanceSquaredTo(agents[j].Position)
						if d < radiusSq {
							alerts++
							minSq = math.Min(minSq, d)
						}
					}
				}
			}
		}
	}
	if alerts == 0 {
		return 0, 0
	}
	return alerts, math.Sqrt(minSq)
}

// summarize flattens a frame into the protobuf Struct returned to Ask callers.
func summarize(snap *FleetSnapshot) (*structpb.Struct, error) {
	if snap == nil {
		return structpb.NewStruct(map[string]any{"sampled": false})
	}
	states := make(map[string]any, len(snap.StateCounts))
	for k, v := range snap.StateCounts {
		states[k] = v
	}
	return structpb.NewStruct(map[string]any{
		"sampled":            true,
		"runId":              snap.RunID,
		"sequence":           float64(snap.Sequence),
		"agents":             len(snap.Agents),
		"states":             states,
		"collisions":         float64(snap.Collisions),
		"proximityAlerts":    snap.ProximityAlerts,
		"minSeparation":      snap.MinSeparation,
		"allOrbitsCompleted": snap.AllOrbitsCompleted,
	})
}

// =====================
// Monitor: actor hosting
// =====================

// Monitor spawns a MonitorActor in an actor system and feeds it sampling ticks.
type Monitor struct {
	pid      *actor.PID
	actor    *MonitorActor
	interval time.Duration
}

// StartMonitor spawns the monitor actor for fleet in system.
func StartMonitor(ctx context.Context, system actor.ActorSystem, fleet *Fleet, snapshotCh chan<- *FleetSnapshot) (*Monitor, error) {
	ma := NewMonitorActor(fleet, snapshotCh)
	pid, err := system.Spawn(ctx, monitorName, ma)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn monitor: %w", err)
	}
	return &Monitor{
		pid:      pid,
		actor:    ma,
		interval: fleet.Config().SampleInterval(),
	}, nil
}

// Sample asks the monitor for one frame now.
func (m *Monitor) Sample(ctx context.Context) error {
	return actor.Tell(ctx, m.pid, timestamppb.Now())
}

// Run samples at the configured interval until ctx ends.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Sample(ctx); err != nil {
				return fmt.Errorf("monitor sample: %w", err)
			}
		}
	}
}

// Summary returns the monitor's view of the latest frame.
func (m *Monitor) Summary(ctx context.Context, timeout time.Duration) (*structpb.Struct, error) {
	resp, err := actor.Ask(ctx, m.pid, &emptypb.Empty{}, timeout)
	if err != nil {
		return nil, fmt.Errorf("monitor summary: %w", err)
	}
	summary, ok := resp.(*structpb.Struct)
	if !ok {
		return nil, errors.New("monitor summary: unexpected reply type")
	}
	return summary, nil
}

// Latest is the most recent frame, nil before the first sample.
func (m *Monitor) Latest() *FleetSnapshot {
	return m.actor.Latest()
}
