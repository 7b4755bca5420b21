package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is the operational state of a Doer.
type State int

const (
	StateExited    State = iota // Initial and resting state
	StateEntered                // Setup done, not yet recurring
	StateRecurring              // Actively repeating
	StateAborted                // Terminal, no further transitions
)

var stateNames = map[State]string{
	StateExited:    "exited",
	StateEntered:   "entered",
	StateRecurring: "recurring",
	StateAborted:   "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Live reports whether the state holds resources that require an exit.
func (s State) Live() bool {
	return s == StateEntered || s == StateRecurring
}

// ParseState converts a name (case-insensitive) into a State.
func ParseState(name string) (State, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == key {
			return s, nil
		}
	}
	return StateAborted, fmt.Errorf("unknown state %q", name)
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
