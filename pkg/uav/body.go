package uav

import (
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

// Body is the point-mass kinematic state of one vehicle.
type Body struct {
	Position     geometry.Vector3D
	Velocity     geometry.Vector3D
	Acceleration geometry.Vector3D

	Mass                float64
	MaxForce            float64
	GravityCompensation float64
}

func newBody(p Params, position geometry.Vector3D) Body {
	return Body{
		Position:            position,
		Mass:                p.Mass,
		MaxForce:            p.MaxForce,
		GravityCompensation: p.GravityCompensation(),
	}
}

// HoverForce is the thrust that exactly cancels gravity.
func (b *Body) HoverForce() geometry.Vector3D {
	return geometry.Vector3D{Z: b.GravityCompensation}
}

// AvailableForce is the thrust left for maneuvering once hover is paid for.
func (b *Body) AvailableForce() float64 {
	return max(0, b.MaxForce-b.GravityCompensation)
}

// Integrate advances the body by dt seconds under the commanded force and the ground plane z = 0.
// It returns false when the resulting state is no longer finite.
func (b *Body) Integrate(force geometry.Vector3D, dt float64) bool {
	// 1. Newton with gravity pulling along -Z
	b.Acceleration = geometry.Vector3D{
		X: force.X / b.Mass,
		Y: force.Y / b.Mass,
		Z: (force.Z - b.GravityCompensation) / b.Mass,
	}

	// 2. Position uses the velocity from before this tick
	b.Position = b.Position.
		Add(b.Velocity.Mul(dt)).
		Add(b.Acceleration.Mul(0.5 * dt * dt))
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))

	// 3. Ground constraint
	if b.Position.Z < 0 {
		b.Position.Z = 0
		if b.Velocity.Z < 0 {
			b.Velocity.Z = 0
		}
	}

	return b.Position.IsFinite() && b.Velocity.IsFinite() && b.Acceleration.IsFinite()
}
