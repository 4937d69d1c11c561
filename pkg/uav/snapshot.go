package uav

import (
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

// Snapshot is a consistent copy of an agent's public state, taken under one lock acquisition.
type Snapshot struct {
	ID             uint64            `json:"id"`
	Name           string            `json:"name"`
	Position       geometry.Vector3D `json:"position"`
	Velocity       geometry.Vector3D `json:"velocity"`
	Acceleration   geometry.Vector3D `json:"acceleration"`
	State          FlightState       `json:"state"`
	ColorIntensity float64           `json:"colorIntensity"`
	OrbitCompleted bool              `json:"orbitCompleted"`
	MissionTime    float64           `json:"missionTime"`
	Running        bool              `json:"running"`
	Collisions     uint64            `json:"collisions"`
}

// Speed is the magnitude of the velocity.
func (s Snapshot) Speed() float64 {
	return s.Velocity.Len()
}

// DistanceTo is the distance from the agent to point p.
func (s Snapshot) DistanceTo(p geometry.Vector3D) float64 {
	return s.Position.DistanceTo(p)
}
