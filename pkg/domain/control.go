package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Control is the directive a driver sends into a Doer on each step.
// Any value outside Enter, Recur and Exit is treated as Abort.
type Control int

const (
	ControlExit Control = iota
	ControlEnter
	ControlRecur
	ControlAbort
)

var controlNames = map[Control]string{
	ControlExit:  "exit",
	ControlEnter: "enter",
	ControlRecur: "recur",
	ControlAbort: "abort",
}

func (c Control) String() string {
	if name, ok := controlNames[c]; ok {
		return name
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// Known reports whether c is one of the four named controls.
func (c Control) Known() bool {
	_, ok := controlNames[c]
	return ok
}

// ParseControl converts a name (case-insensitive) into a Control.
// Returns ErrUnknownControl for anything else.
func ParseControl(name string) (Control, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for c, n := range controlNames {
		if n == key {
			return c, nil
		}
	}
	return ControlAbort, fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// MarshalJSON encodes the control by name.
func (c Control) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a control name.
func (c *Control) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseControl(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
