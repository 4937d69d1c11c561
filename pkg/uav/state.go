package uav

import (
	"fmt"
	"strings"
)

// FlightState is the phase of the per-agent flight state machine.
// Transitions only ever move forward: Idle → Ascent → Orbit → Finished.
type FlightState int

const (
	StateIdle FlightState = iota
	StateAscent
	StateOrbit
	// StateReturn is reserved for a return-to-home phase. No transition reaches it.
	StateReturn
	StateFinished
)

var stateNames = [...]string{
	StateIdle:     "idle",
	StateAscent:   "ascent",
	StateOrbit:    "orbit",
	StateReturn:   "return",
	StateFinished: "finished",
}

// AllStates lists every declared state in transition order.
var AllStates = []FlightState{StateIdle, StateAscent, StateOrbit, StateReturn, StateFinished}

func (s FlightState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("FlightState(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state by name so snapshots read well as JSON.
func (s FlightState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unknown flight state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *FlightState) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range stateNames {
		if n == name {
			*s = FlightState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown flight state %q", string(text))
}
