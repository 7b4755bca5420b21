package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/doing/pkg/ports"
	"github.com/benbjohnson/clock"
)

// DefaultTock is the pause between ticks when every due Doer asks for asap.
const DefaultTock = 25 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithClock sets the time source. Tests use clock.NewMock().
func WithClock(clk clock.Clock) Option {
	return func(r *Runner) {
		r.clock = clk
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithStore records a Snapshot of every Doer after each step.
func WithStore(store ports.StatusStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithTock sets the minimum pause between ticks.
func WithTock(tock time.Duration) Option {
	return func(r *Runner) {
		r.tock = tock
	}
}

// WithLimit bounds the total run time. Zero means no limit.
func WithLimit(limit time.Duration) Option {
	return func(r *Runner) {
		r.limit = limit
	}
}

// WithMetrics reports the number of live Doers after each tick.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}
