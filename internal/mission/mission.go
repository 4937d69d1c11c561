// Package mission boots everything a fleet run needs: configuration, the actor
// system, the fleet, its monitor and the telemetry server.
package mission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/telemetry"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
)

const (
	EnvConfigFile    = "UAV_FLEET_CONFIG"
	EnvTelemetryAddr = "UAV_FLEET_TELEMETRY_ADDR"

	actorSystemName = "UAVFleet"
)

// Mission is one assembled run. Fields are ready to use after New returns.
type Mission struct {
	Config     *simulation.Config
	System     actor.ActorSystem
	Fleet      *simulation.Fleet
	Monitor    *simulation.Monitor
	Telemetry  *telemetry.Server
	SnapshotCh chan *simulation.FleetSnapshot
	Logger     golog.Logger
}

// LoadEnv reads an optional .env file then resolves the configuration:
// the file named by UAV_FLEET_CONFIG, or the defaults.
func LoadEnv(l golog.Logger) (*simulation.Config, error) {
	if err := godotenv.Load(); err != nil {
		l.Debugf("no .env file: %v", err)
	}

	cfg := simulation.DefaultConfig()
	if path := os.Getenv(EnvConfigFile); path != "" {
		loaded, err := simulation.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		l.Infof("config loaded from %s", path)
	}
	if addr, ok := os.LookupEnv(EnvTelemetryAddr); ok {
		cfg.TelemetryAddr = addr
	}
	return cfg, nil
}

// New starts the actor system and the monitor, and builds the fleet without starting it.
func New(ctx context.Context, cfg *simulation.Config, l golog.Logger) (*Mission, error) {
	// 1. Fleet
	fleet, err := simulation.NewFleet(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to build fleet: %w", err)
	}

	// 2. Actor system
	system, err := actor.NewActorSystem(actorSystemName,
		actor.WithLogger(l),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	// 3. Monitor, one slot so the viewer only ever sees a fresh frame
	snapshotCh := make(chan *simulation.FleetSnapshot, 1)
	monitor, err := simulation.StartMonitor(ctx, system, fleet, snapshotCh)
	if err != nil {
		_ = system.Stop(ctx)
		return nil, err
	}

	m := &Mission{
		Config:     cfg,
		System:     system,
		Fleet:      fleet,
		Monitor:    monitor,
		SnapshotCh: snapshotCh,
		Logger:     l,
	}

	// 4. Telemetry, optional
	if cfg.TelemetryAddr != "" {
		m.Telemetry = telemetry.NewServer(monitor, cfg.SampleInterval(), l)
	}
	return m, nil
}

// ServeTelemetry runs the telemetry server in the background when one is configured.
func (m *Mission) ServeTelemetry() {
	if m.Telemetry == nil {
		return
	}
	go func() {
		if err := m.Telemetry.Listen(m.Config.TelemetryAddr); err != nil {
			m.Logger.Errorf("telemetry server: %v", err)
		}
	}()
}

// Close stops the agents, the telemetry server and the actor system, each bounded by timeout.
func (m *Mission) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := m.Fleet.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if m.Telemetry != nil {
		if err := m.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}
	if err := m.System.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("actor system stop: %w", err))
	}
	return errors.Join(errs...)
}
