package ports

import (
	"context"

	"github.com/aretw0/doing/pkg/domain"
)

// Unit is the part of a Doer visible to its own hooks.
// Hooks steer the driver by changing the desired control or the tock.
type Unit interface {
	// Desire returns the control the unit proposes for its next step.
	Desire() domain.Control
	// SetDesire changes the proposed control.
	SetDesire(domain.Control)
	// Tock returns the desired interval until the next step.
	Tock() float64
	// SetTock sets the desired interval. Negative values are stored as their absolute value.
	SetTock(float64)
	// Done reports the completion flag.
	Done() bool
}

// Hooks carries the domain work of a Doer.
// The machine decides when each hook runs; a hook never changes the state directly.
// Returning an error (or panicking) aborts the Doer after a forced exit.
type Hooks interface {
	// Enter performs setup (open, refresh, allocate).
	Enter(ctx context.Context, u Unit) error

	// Recur performs one unit of recurring work.
	Recur(ctx context.Context, u Unit) error

	// Exit performs teardown. forced is true when the exit was not requested
	// by the driver (reentry, abort or failure cleanup).
	Exit(ctx context.Context, u Unit, forced bool) error
}
