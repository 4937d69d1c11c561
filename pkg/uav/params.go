package uav

import (
	"errors"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

// GravityAcceleration is the gravity constant of the simulated world (m/s²).
// The hover force of an agent is GravityAcceleration·mass.
const GravityAcceleration = 10.0

// Flight controller tuning. These are properties of the controller, not of the fleet.
const (
	AscentMaxSpeed         = 2.0  // m/s, approach speed far from the sphere
	AscentArrivalTolerance = 0.5  // m, distance to the sphere surface that ends the ascent
	LateralDeadband        = 0.05 // m/s, lateral drift ignored during ascent
	LateralDampingGain     = 0.6  // share of the available force spent on lateral damping

	OrbitMinSpeed      = 2.0  // m/s
	OrbitMaxSpeed      = 10.0 // m/s
	OrbitTargetSpeed   = 6.0  // m/s
	OrbitMidBandLimit  = 0.5  // max |ratio| while inside the speed band
	RadialDampingGain  = 2.0  // N per m/s of radial velocity
	TangentRefreshMin  = 100  // ticks
	TangentRefreshMax  = 200  // ticks
	ColorFrequencyHz   = 0.5
	ColorBaseIntensity = 0.75
	ColorSwing         = 0.25
)

var (
	ErrInvalidMass           = errors.New("mass must be positive and finite")
	ErrInvalidMaxForce       = errors.New("max force must be positive and finite")
	ErrInvalidTick           = errors.New("tick interval must be positive")
	ErrInvalidSphere         = errors.New("sphere radius must be positive")
	ErrInvalidBoundingRadius = errors.New("bounding radius and clearance must not be negative")
	ErrInvalidDuration       = errors.New("idle and orbit durations must not be negative")
)

// Gains holds the three PID gains.
type Gains struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
}

// Params are the physical constants, mission geometry and timings shared by every agent of a fleet.
type Params struct {
	Mass     float64
	MaxForce float64

	SphereCenter geometry.Vector3D
	SphereRadius float64

	IdleDuration  time.Duration
	OrbitDuration time.Duration
	TickInterval  time.Duration

	BoundingRadius     float64
	CollisionClearance float64

	// FinishAfterOrbit moves an agent to StateFinished once its orbit time is flown.
	// When false the agent keeps station on the sphere and only raises the completed flag.
	FinishAfterOrbit bool

	OrbitGains Gains
}

// DefaultParams returns the reference mission: 1 kg vehicles with 20 N of thrust,
// a 10 m sphere centered 50 m above the origin, 5 s idle, 60 s orbit, 10 ms ticks.
func DefaultParams() Params {
	return Params{
		Mass:               1.0,
		MaxForce:           20.0,
		SphereCenter:       geometry.Vector3D{Z: 50},
		SphereRadius:       10.0,
		IdleDuration:       5 * time.Second,
		OrbitDuration:      60 * time.Second,
		TickInterval:       10 * time.Millisecond,
		BoundingRadius:     0.1,
		CollisionClearance: 0.01,
		OrbitGains:         Gains{Kp: 8.0, Ki: 0.1, Kd: 3.0},
	}
}

// Validate reports the first parameter that would make the physics ill-defined.
func (p Params) Validate() error {
	switch {
	case !(p.Mass > 0) || !finite(p.Mass):
		return fmt.Errorf("%w: got %v", ErrInvalidMass, p.Mass)
	case !(p.MaxForce > 0) || !finite(p.MaxForce):
		return fmt.Errorf("%w: got %v", ErrInvalidMaxForce, p.MaxForce)
	case p.TickInterval <= 0:
		return fmt.Errorf("%w: got %v", ErrInvalidTick, p.TickInterval)
	case !(p.SphereRadius > 0) || !p.SphereCenter.IsFinite():
		return fmt.Errorf("%w: got radius %v center %s", ErrInvalidSphere, p.SphereRadius, p.SphereCenter)
	case p.BoundingRadius < 0 || p.CollisionClearance < 0:
		return fmt.Errorf("%w: got %v + %v", ErrInvalidBoundingRadius, p.BoundingRadius, p.CollisionClearance)
	case p.IdleDuration < 0 || p.OrbitDuration < 0:
		return fmt.Errorf("%w: got idle %v orbit %v", ErrInvalidDuration, p.IdleDuration, p.OrbitDuration)
	}
	return nil
}

// TriggerDistance is the center distance below which two agents collide.
func (p Params) TriggerDistance() float64 {
	return 2*p.BoundingRadius + p.CollisionClearance
}

// GravityCompensation is the upward force that exactly cancels gravity for Mass.
func (p Params) GravityCompensation() float64 {
	return GravityAcceleration * p.Mass
}

func finite(x float64) bool {
	return geometry.Vector3D{X: x}.IsFinite()
}
