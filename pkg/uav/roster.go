package uav

// Roster is the read-only set of agents a collision pass checks against.
// It is owned by the orchestration layer and must not change once any agent has started.
type Roster interface {
	Members() []*Agent
}

// StaticRoster is a fixed slice of agents.
type StaticRoster []*Agent

func (r StaticRoster) Members() []*Agent {
	return r
}
