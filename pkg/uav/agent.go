// Package uav implements a single simulated vehicle: its flight state machine,
// point-mass kinematics, pairwise collision response and the goroutine that
// drives them at a fixed tick.
package uav

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
	golog "github.com/tochemey/goakt/v3/log"
)

var (
	ErrStopTimeout = errors.New("agent did not stop in time")
	ErrNonFinite   = errors.New("kinematic state is no longer finite")
	ErrRunning     = errors.New("agent is running")
)

var nextID atomic.Uint64

const pcgStream = 0x9e3779b97f4a7c15

// Agent is one UAV. Every kinematic and flight-controller field is guarded by mu;
// the running flag and the collision counter are atomic and read without it.
type Agent struct {
	id     uint64
	name   string
	params Params
	seed   uint64
	roster Roster
	logger golog.Logger

	mu   sync.Mutex
	body Body
	ctrl *flightController

	running    atomic.Bool
	collisions atomic.Uint64

	lifeMu sync.Mutex
	quit   chan struct{}
	done   chan struct{}
}

// Option configures an Agent at construction.
type Option func(*Agent)

// WithParams replaces the default mission parameters.
func WithParams(p Params) Option {
	return func(a *Agent) { a.params = p }
}

// WithRoster sets the fleet the agent checks for collisions.
func WithRoster(r Roster) Option {
	return func(a *Agent) { a.roster = r }
}

func WithLogger(l golog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithSeed makes the tangent wander reproducible.
func WithSeed(seed uint64) Option {
	return func(a *Agent) { a.seed = seed }
}

func WithName(name string) Option {
	return func(a *Agent) { a.name = name }
}

// NewAgent creates an idle agent resting at position.
func NewAgent(position geometry.Vector3D, opts ...Option) (*Agent, error) {
	a := &Agent{
		id:     nextID.Add(1),
		params: DefaultParams(),
		logger: golog.DefaultLogger,
	}
	a.seed = a.id
	for _, opt := range opts {
		opt(a)
	}
	if err := a.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent parameters: %w", err)
	}
	if !position.IsFinite() {
		return nil, fmt.Errorf("invalid spawn position %s", position)
	}
	if a.name == "" {
		a.name = fmt.Sprintf("uav-%d", a.id)
	}
	if a.logger == nil {
		a.logger = golog.DiscardLogger
	}

	a.body = newBody(a.params, position)
	a.ctrl = newFlightController(a.params, rand.New(rand.NewPCG(a.seed, a.seed^pcgStream)))
	return a, nil
}

func (a *Agent) ID() uint64 {
	return a.id
}

func (a *Agent) Name() string {
	return a.name
}

// Params returns the mission parameters the agent was built with.
func (a *Agent) Params() Params {
	return a.params
}

// SetRoster replaces the collision roster. It fails while the agent is running.
func (a *Agent) SetRoster(r Roster) error {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if a.done != nil {
		return ErrRunning
	}
	a.roster = r
	return nil
}

// Step advances the agent by one tick of dt seconds: the flight controller and
// the integrator run under the agent's lock, then collisions are resolved
// against the roster. Start calls it from the agent's own goroutine; tests and
// lockstep drivers may call it directly on a stopped agent.
func (a *Agent) Step(dt float64) error {
	a.mu.Lock()
	before, wasCompleted := a.ctrl.state, a.ctrl.orbitCompleted
	force := a.ctrl.computeForce(&a.body, dt)
	ok := a.body.Integrate(force, dt)
	after, completed := a.ctrl.state, a.ctrl.orbitCompleted
	pos := a.body.Position
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrNonFinite, a.name, pos)
	}
	if after != before {
		a.logger.Infof("%s: %s -> %s at %s", a.name, before, after, pos)
	}
	if completed && !wasCompleted {
		a.logger.Infof("%s: orbit completed", a.name)
	}

	ResolveCollisions(a, a.roster)
	return nil
}

// Start launches the control loop. Calling it on a started agent does nothing.
func (a *Agent) Start() {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if a.done != nil {
		return
	}
	a.quit = make(chan struct{})
	a.done = make(chan struct{})
	a.running.Store(true)
	go a.run(a.quit, a.done)
}

func (a *Agent) run(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer a.running.Store(false)

	ticker := time.NewTicker(a.params.TickInterval)
	defer ticker.Stop()
	dt := a.params.TickInterval.Seconds()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
		}
		if err := a.Step(dt); err != nil {
			a.logger.Errorf("%s: control loop stopped: %v", a.name, err)
			return
		}
	}
}

// Stop ends the control loop and waits for its goroutine to exit. It is safe
// to call any number of times, including on an agent that never started.
func (a *Agent) Stop() {
	_ = a.StopContext(context.Background())
}

// StopContext is Stop bounded by ctx. When ctx ends first it returns an error
// wrapping ErrStopTimeout; a later call waits for the same goroutine again.
func (a *Agent) StopContext(ctx context.Context) error {
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if a.done == nil {
		return nil
	}
	if a.quit != nil {
		a.running.Store(false)
		close(a.quit)
		a.quit = nil
	}
	select {
	case <-a.done:
		a.done = nil
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrStopTimeout, a.name, ctx.Err())
	}
}

// =====================
// Accessors
// =====================

func (a *Agent) Position() geometry.Vector3D {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.body.Position
}

func (a *Agent) Velocity() geometry.Vector3D {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.body.Velocity
}

func (a *Agent) Acceleration() geometry.Vector3D {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.body.Acceleration
}

func (a *Agent) FlightState() FlightState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.state
}

// ColorIntensity is the cosmetic pulse value in [0.5, 1.0].
func (a *Agent) ColorIntensity() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.colorIntensity()
}

func (a *Agent) HasCompletedOrbit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.orbitCompleted
}

// MissionTime is the simulated time flown so far, in seconds.
func (a *Agent) MissionTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl.missionTime
}

func (a *Agent) IsRunning() bool {
	return a.running.Load()
}

// CollisionCount is the number of collisions this agent has resolved.
func (a *Agent) CollisionCount() uint64 {
	return a.collisions.Load()
}

// Snapshot copies every public field in a single lock acquisition.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	s := Snapshot{
		ID:             a.id,
		Name:           a.name,
		Position:       a.body.Position,
		Velocity:       a.body.Velocity,
		Acceleration:   a.body.Acceleration,
		State:          a.ctrl.state,
		ColorIntensity: a.ctrl.colorIntensity(),
		OrbitCompleted: a.ctrl.orbitCompleted,
		MissionTime:    a.ctrl.missionTime,
	}
	a.mu.Unlock()
	s.Running = a.running.Load()
	s.Collisions = a.collisions.Load()
	return s
}
