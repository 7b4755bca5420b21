package doing

import (
	"context"
	_ "embed"
	"log/slog"
	"time"

	"github.com/aretw0/doing/internal/runtime"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
)

// Version is the release of the doing module.
//
//go:embed VERSION
var Version string

// Doer is a single schedulable unit driven one step at a time.
// It wraps the internal state machine and is not safe for concurrent use.
type Doer struct {
	machine *runtime.Machine
}

var _ ports.Unit = (*Doer)(nil)

// Option defines a functional option for configuring a Doer.
type Option func(*config)

type config struct {
	opts []runtime.Option
}

// WithHooks attaches the unit's enter, recur and exit work.
func WithHooks(h ports.Hooks) Option {
	return func(c *config) {
		c.opts = append(c.opts, runtime.WithHooks(h))
	}
}

// WithTock sets the desired interval between steps; 0 means as soon as possible.
// Negative values are stored as their absolute value.
func WithTock(tock float64) Option {
	return func(c *config) {
		c.opts = append(c.opts, runtime.WithTock(tock))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.opts = append(c.opts, runtime.WithLogger(logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.opts = append(c.opts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithName labels the Doer in logs, events and snapshots.
func WithName(name string) Option {
	return func(c *config) {
		c.opts = append(c.opts, runtime.WithName(name))
	}
}

// New creates a Doer in the Exited state, done, desiring Exit,
// ready to accept its first control.
func New(opts ...Option) *Doer {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Doer{machine: runtime.NewMachine(cfg.opts...)}
}

// Step sends control into the Doer, runs one transition and returns the resulting state.
// Any control other than Enter, Recur or Exit is treated as Abort.
// After the Doer stopped, Step returns domain.ErrExhausted.
func (d *Doer) Step(ctx context.Context, control domain.Control) (domain.State, error) {
	return d.machine.Step(ctx, control)
}

// State returns the last state reached.
func (d *Doer) State() domain.State { return d.machine.State() }

// Desire returns the control the Doer proposes for its next step.
func (d *Doer) Desire() domain.Control { return d.machine.Desire() }

// SetDesire changes the proposed control.
func (d *Doer) SetDesire(c domain.Control) { d.machine.SetDesire(c) }

// Done reports whether the Doer completed with a clean exit.
func (d *Doer) Done() bool { return d.machine.Done() }

// Tock returns the desired interval until the next step.
func (d *Doer) Tock() float64 { return d.machine.Tock() }

// SetTock stores the absolute value of tock.
func (d *Doer) SetTock(tock float64) { d.machine.SetTock(tock) }

// Stopped reports whether the Doer reached its terminal state.
func (d *Doer) Stopped() bool { return d.machine.Stopped() }

// Name returns the label given with WithName.
func (d *Doer) Name() string { return d.machine.Name() }

// Snapshot captures the driver-visible view of the Doer at now.
func (d *Doer) Snapshot(now time.Time) domain.Snapshot {
	return d.machine.Snapshot(now)
}
