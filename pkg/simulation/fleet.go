package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/uav"
	golog "github.com/tochemey/goakt/v3/log"
	"golang.org/x/sync/errgroup"
)

// Fleet owns every agent of a run and is the roster they check for collisions.
// The member list is fixed at construction.
type Fleet struct {
	RunID string

	cfg    *Config
	agents []*uav.Agent
	byName map[string]*uav.Agent
	logger golog.Logger

	mu      sync.Mutex
	started bool
}

// NewFleet builds one idle agent per spawn position of cfg.
func NewFleet(cfg *Config, logger golog.Logger) (*Fleet, error) {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	positions := cfg.SpawnPositions()
	if len(positions) == 0 {
		return nil, ErrNoAgents
	}

	f := &Fleet{
		RunID:  uuid.NewString(),
		cfg:    cfg,
		agents: make([]*uav.Agent, 0, len(positions)),
		byName: make(map[string]*uav.Agent, len(positions)),
		logger: logger,
	}
	params := cfg.Params()
	for i, pos := range positions {
		name := fmt.Sprintf("UAV-%02d", i)
		a, err := uav.NewAgent(pos,
			uav.WithName(name),
			uav.WithParams(params),
			uav.WithRoster(f),
			uav.WithLogger(logger),
			uav.WithSeed(uint64(i)+1),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		f.agents = append(f.agents, a)
		f.byName[name] = a
	}
	logger.Infof("fleet %s: %d agents, sphere %s r=%.1f", f.RunID, len(f.agents), cfg.SphereCenter, cfg.SphereRadius)
	return f, nil
}

// Members implements uav.Roster.
func (f *Fleet) Members() []*uav.Agent {
	return f.agents
}

func (f *Fleet) Len() int {
	return len(f.agents)
}

// Agent finds a member by name.
func (f *Fleet) Agent(name string) (*uav.Agent, bool) {
	a, ok := f.byName[name]
	return a, ok
}

func (f *Fleet) Config() *Config {
	return f.cfg
}

// Start launches every agent's control loop.
func (f *Fleet) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return
	}
	for _, a := range f.agents {
		a.Start()
	}
	f.started = true
	f.logger.Infof("fleet %s started", f.RunID)
}

// Stop stops every agent in parallel and waits for all of them, bounded by ctx.
func (f *Fleet) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range f.agents {
		g.Go(func() error {
			return a.StopContext(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fleet %s stop: %w", f.RunID, err)
	}
	if f.started {
		f.logger.Infof("fleet %s stopped", f.RunID)
	}
	f.started = false
	return nil
}

// Step advances every agent by one tick in order, on the caller's goroutine.
// It must not be mixed with Start.
func (f *Fleet) Step(dt float64) error {
	for _, a := range f.agents {
		if err := a.Step(dt); err != nil {
			return err
		}
	}
	return nil
}

// AllOrbitsCompleted reports whether every agent has flown its full orbit.
func (f *Fleet) AllOrbitsCompleted() bool {
	for _, a := range f.agents {
		if !a.HasCompletedOrbit() {
			return false
		}
	}
	return true
}

// CollisionCount is the total of resolved collisions across the fleet.
func (f *Fleet) CollisionCount() uint64 {
	var total uint64
	for _, a := range f.agents {
		total += a.CollisionCount()
	}
	return total
}

// Snapshots samples every agent, one lock acquisition each.
func (f *Fleet) Snapshots() []uav.Snapshot {
	out := make([]uav.Snapshot, len(f.agents))
	for i, a := range f.agents {
		out[i] = a.Snapshot()
	}
	return out
}

// WaitForOrbits polls until every agent has completed its orbit or ctx ends.
func (f *Fleet) WaitForOrbits(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if f.AllOrbitsCompleted() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
