package uav

import (
	"github.com/lao-tseu-is-alive/go-uav-fleet-simulation/pkg/geometry"
)

// separationSlack keeps a freshly separated pair, sitting exactly at the
// trigger distance, from being detected again by the other agent's pass.
const separationSlack = 1e-9

// ResolveCollisions checks self against every other member of the roster and
// resolves each overlapping pair: velocities are exchanged and both agents are
// pushed apart along their center line to exactly the trigger distance.
// It returns the number of pairs resolved.
//
// Self's lock is never held while scanning. Each pair is handled under both
// locks, taken in ascending ID order. Overlaps involving three or more agents
// are resolved pair by pair with no global reconciliation.
func ResolveCollisions(self *Agent, roster Roster) int {
	if self == nil || roster == nil {
		return 0
	}
	trigger := self.params.TriggerDistance()
	if trigger <= 0 {
		return 0
	}

	resolved := 0
	selfPos := self.Position()
	for _, other := range roster.Members() {
		if other == nil || other == self {
			continue
		}
		if selfPos.DistanceTo(other.Position())+separationSlack >= trigger {
			continue
		}
		if resolvePair(self, other, trigger) {
			resolved++
			self.collisions.Add(1)
			self.logger.Debugf("%s: collision with %s resolved", self.name, other.name)
			selfPos = self.Position()
		}
	}
	return resolved
}

// resolvePair re-checks the overlap under both locks since either agent may
// have moved after the unlocked distance check.
func resolvePair(a, b *Agent, trigger float64) bool {
	unlock := lockPair(a, b)
	defer unlock()

	delta := b.body.Position.Sub(a.body.Position)
	dist := delta.Len()
	if dist+separationSlack >= trigger {
		return false
	}

	a.body.Velocity, b.body.Velocity = b.body.Velocity, a.body.Velocity

	var axis geometry.Vector3D
	if dist < geometry.NormalizeEpsilon {
		axis = geometry.UnitX
	} else {
		axis = delta.Mul(1 / dist)
	}
	push := axis.Mul((trigger - dist) / 2)
	a.body.Position = a.body.Position.Sub(push)
	b.body.Position = b.body.Position.Add(push)

	// the ground still wins over the separation
	a.body.Position.Z = max(a.body.Position.Z, 0)
	b.body.Position.Z = max(b.body.Position.Z, 0)
	return true
}

// lockPair locks both agents, lower ID first, and returns the matching unlock.
func lockPair(a, b *Agent) (unlock func()) {
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
