package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventHookError  EventType = "hook_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	DoerName  string    `json:"doer_name,omitempty"`
}

// TransitionEvent describes one completed step.
type TransitionEvent struct {
	EventBase
	Control Control `json:"control"`
	From    State   `json:"from"`
	To      State   `json:"to"`
	Done    bool    `json:"done"`
}

// HookErrorEvent describes a hook failure and the cleanup that followed it.
type HookErrorEvent struct {
	EventBase
	Hook   Hook   `json:"hook"`
	Forced bool   `json:"forced,omitempty"`
	Err    string `json:"err"`
}

// LifecycleHooks defines callbacks for observability.
// They are distinct from ports.Hooks, which carry the unit's own work.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnHookError  func(context.Context, *HookErrorEvent)
}
