package domain

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned when Step is called on a Doer that already stopped.
// It signals a caller contract violation and must not be retried.
var ErrExhausted = errors.New("doer exhausted")

// ErrDoerNotFound is returned when a snapshot cannot be found in the store.
var ErrDoerNotFound = errors.New("doer not found")

// ErrUnknownControl is returned when parsing a control name fails.
var ErrUnknownControl = errors.New("unknown control")

// Hook names a lifecycle hook.
type Hook string

const (
	HookEnter Hook = "enter"
	HookRecur Hook = "recur"
	HookExit  Hook = "exit"
)

// HookError reports a failure raised by a lifecycle hook during a step.
// By the time it reaches the caller the Doer is already Aborted.
type HookError struct {
	Hook   Hook
	Forced bool // only meaningful for HookExit
	Err    error
}

func (e *HookError) Error() string {
	if e.Hook == HookExit && e.Forced {
		return fmt.Sprintf("forced exit hook failed: %v", e.Err)
	}
	return fmt.Sprintf("%s hook failed: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking hook.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
