package uav

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/control"
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

const (
	pidRadial = iota
	pidAlongTrack
	pidCrossTrack
	pidCount
)

// flightController turns the body state into a thrust command for one tick.
// It is owned by a single Agent and only touched under that agent's lock.
type flightController struct {
	params Params

	state          FlightState
	missionTime    float64 // simulated seconds since the agent was created
	orbitStartTime float64
	orbitCompleted bool

	// Only the radial controller drives the orbit. The two track controllers
	// are reset with it and kept for per-axis trimming.
	pids [pidCount]*control.PID

	tangentDir        geometry.Vector3D
	ticksSinceRefresh int
	refreshInterval   int

	colorPhase float64
	rng        *rand.Rand
}

func newFlightController(p Params, rng *rand.Rand) *flightController {
	c := &flightController{
		params: p,
		state:  StateIdle,
		rng:    rng,
	}
	for i := range c.pids {
		c.pids[i] = control.NewPID(p.OrbitGains.Kp, p.OrbitGains.Ki, p.OrbitGains.Kd)
	}
	c.refreshTangent()
	return c
}

// computeForce advances the mission clock by dt and returns the commanded force.
func (c *flightController) computeForce(b *Body, dt float64) geometry.Vector3D {
	c.missionTime += dt
	c.advanceColor(dt)

	switch c.state {
	case StateIdle:
		if c.missionTime < c.params.IdleDuration.Seconds() {
			b.Velocity = geometry.Zero
			return b.HoverForce()
		}
		c.state = StateAscent
		return b.HoverForce()
	case StateAscent:
		return c.ascend(b)
	case StateOrbit:
		return c.orbit(b, dt)
	default:
		return b.HoverForce()
	}
}

// ascend climbs towards the sphere surface with a speed that tapers off near it.
func (c *flightController) ascend(b *Body) geometry.Vector3D {
	hover := b.HoverForce()
	toCenter := c.params.SphereCenter.Sub(b.Position)
	surfaceDist := toCenter.Len() - c.params.SphereRadius

	if surfaceDist <= AscentArrivalTolerance {
		c.enterOrbit()
		return hover
	}

	dir := toCenter.Normalize()
	available := b.AvailableForce()

	// 1. Speed along the approach direction
	targetSpeed := control.Clamp(surfaceDist/c.params.SphereRadius, 0, 1) * AscentMaxSpeed
	speedToward := b.Velocity.Dot(dir)
	ratio := control.Clamp((targetSpeed-speedToward)/AscentMaxSpeed, -1, 1)
	thrust := hover.Add(dir.Mul(available * ratio))

	// 2. Lateral drift damping
	lateral := b.Velocity.Sub(dir.Mul(speedToward))
	if lateralSpeed := lateral.Len(); lateralSpeed > LateralDeadband && available > 0 {
		gain := LateralDampingGain * control.Clamp(lateralSpeed/AscentMaxSpeed, 0, 1)
		thrust = thrust.Add(lateral.Normalize().Mul(-available * gain))
	}

	return thrust.ClampLen(b.MaxForce)
}

// orbit holds the sphere radius with the radial PID and keeps a tangential cruise speed.
func (c *flightController) orbit(b *Body, dt float64) geometry.Vector3D {
	hover := b.HoverForce()

	if c.missionTime-c.orbitStartTime >= c.params.OrbitDuration.Seconds() {
		c.orbitCompleted = true
		if c.params.FinishAfterOrbit {
			c.state = StateFinished
			return hover
		}
	}

	available := b.AvailableForce()

	// 1. Radial hold
	fromCenter := b.Position.Sub(c.params.SphereCenter)
	radius := fromCenter.Len()
	if radius < geometry.NormalizeEpsilon {
		fromCenter = geometry.Vector3D{Z: geometry.NormalizeEpsilon}
		radius = geometry.NormalizeEpsilon
	}
	radial := fromCenter.Mul(1 / radius)
	radialSpeed := b.Velocity.Dot(radial)
	radialError := radius - c.params.SphereRadius
	radialCmd := c.pids[pidRadial].Update(0, radialError, dt) - RadialDampingGain*radialSpeed
	radialCmd = control.Clamp(radialCmd, -available, available)

	// 2. Tangential cruise
	seed := c.tangentDir.RejectFrom(radial)
	if seed.Len() < geometry.NormalizeEpsilon {
		c.refreshTangent()
		seed = c.tangentDir.RejectFrom(radial)
	}
	tangent := seed.Normalize()

	tangentialVel := b.Velocity.Sub(radial.Mul(radialSpeed))
	speed := tangentialVel.Len()
	ratio := tangentialRatio(speed)
	if ratio < 0 && speed > LateralDeadband {
		// braking acts against the current motion, whatever the seed direction
		tangent = tangentialVel.Normalize()
	}

	// 3. Periodic wander of the seed direction
	c.ticksSinceRefresh++
	if c.ticksSinceRefresh >= c.refreshInterval {
		c.refreshTangent()
	}

	force := hover.
		Add(radial.Mul(radialCmd)).
		Add(tangent.Mul(available * ratio))
	return force.ClampLen(b.MaxForce)
}

// tangentialRatio maps the current tangential speed to a share of the available force.
func tangentialRatio(speed float64) float64 {
	switch {
	case speed < OrbitMinSpeed:
		return control.Clamp((OrbitMinSpeed-speed)/OrbitMinSpeed, 0, 1)
	case speed > OrbitMaxSpeed:
		return -control.Clamp((speed-OrbitMaxSpeed)/OrbitMaxSpeed, 0, 1)
	default:
		r := (OrbitTargetSpeed - speed) / OrbitTargetSpeed
		return control.Clamp(r, -OrbitMidBandLimit, OrbitMidBandLimit)
	}
}

func (c *flightController) enterOrbit() {
	c.state = StateOrbit
	c.orbitStartTime = c.missionTime
	for _, pid := range c.pids {
		pid.Reset()
	}
	c.refreshTangent()
}

// refreshTangent draws a new random seed direction and the tick count until the next one.
func (c *flightController) refreshTangent() {
	c.tangentDir = geometry.Vector3D{
		X: c.rng.Float64()*2 - 1,
		Y: c.rng.Float64()*2 - 1,
		Z: c.rng.Float64()*2 - 1,
	}.Normalize()
	c.ticksSinceRefresh = 0
	c.refreshInterval = TangentRefreshMin + c.rng.IntN(TangentRefreshMax-TangentRefreshMin+1)
}

func (c *flightController) advanceColor(dt float64) {
	c.colorPhase += 2 * math.Pi * ColorFrequencyHz * dt
	if c.colorPhase >= 2*math.Pi {
		c.colorPhase = math.Mod(c.colorPhase, 2*math.Pi)
	}
}

// colorIntensity pulses in [0.5, 1.0].
func (c *flightController) colorIntensity() float64 {
	return ColorBaseIntensity + ColorSwing*math.Sin(c.colorPhase)
}
