package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/internal/logging"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
	"github.com/benbjohnson/clock"
)

// Metrics receives runner-level gauges.
type Metrics interface {
	SetLive(n int)
}

// Runner drives Doers one step at a time in insertion order.
// It is not safe for concurrent use.
type Runner struct {
	clock   clock.Clock
	logger  *slog.Logger
	store   ports.StatusStore
	metrics Metrics
	tock    time.Duration
	limit   time.Duration

	entries []*entry
	names   map[string]bool
	readied bool
}

type entry struct {
	name string
	doer *doing.Doer
	due  time.Time
}

// New creates a Runner using the wall clock and a no-op logger.
func New(opts ...Option) *Runner {
	r := &Runner{
		clock:  clock.New(),
		logger: logging.NewNop(),
		tock:   DefaultTock,
		names:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	return r
}

// Add registers a Doer. Unnamed Doers get the first free "doer-N" name.
// Doers added after Ready are entered on the next tick.
func (r *Runner) Add(d *doing.Doer) error {
	name := d.Name()
	if name == "" {
		for n := len(r.names) + 1; ; n++ {
			name = fmt.Sprintf("doer-%d", n)
			if !r.names[name] {
				break
			}
		}
	}
	if r.names[name] {
		return fmt.Errorf("doer %q already added", name)
	}
	if d.Stopped() {
		return fmt.Errorf("doer %q: %w", name, domain.ErrExhausted)
	}
	r.names[name] = true
	r.entries = append(r.entries, &entry{name: name, doer: d, due: r.clock.Now()})
	if r.readied {
		d.SetDesire(domain.ControlEnter)
	}
	return nil
}

// Live returns the names of the Doers still scheduled.
func (r *Runner) Live() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// Ready enters every Doer. Each Doer's desire is set to Recur beforehand so
// that, unless a hook says otherwise, the following ticks keep it recurring.
func (r *Runner) Ready(ctx context.Context) error {
	r.readied = true
	now := r.clock.Now()
	var errs []error
	for _, e := range r.entries {
		if err := r.step(ctx, e, domain.ControlEnter, now); err != nil {
			errs = append(errs, err)
		}
	}
	r.sweep()
	return errors.Join(errs...)
}

// Once runs one tick: every due Doer is stepped with the control derived from
// its desire, then rescheduled by its tock. Finished Doers are removed.
// Hook failures are collected; the remaining Doers keep running.
func (r *Runner) Once(ctx context.Context) error {
	now := r.clock.Now()
	var errs []error
	for _, e := range r.entries {
		if e.due.After(now) {
			continue
		}
		control := nextControl(e.doer.Desire())
		if err := r.step(ctx, e, control, now); err != nil {
			errs = append(errs, err)
		}
	}
	r.sweep()
	return errors.Join(errs...)
}

// Run enters all Doers and ticks until every Doer finished, the limit elapsed
// or ctx is cancelled. Doers still live at that point get a clean Exit.
// Returns ctx.Err() when cancelled, joined with any hook failure.
func (r *Runner) Run(ctx context.Context) error {
	start := r.clock.Now()
	r.logger.Info("runner started", "doers", len(r.entries), "limit", r.limit)

	errs := []error{r.Ready(ctx)}
	for len(r.entries) > 0 {
		if r.limit > 0 && r.clock.Since(start) >= r.limit {
			r.logger.Info("runner limit reached", "elapsed", r.clock.Since(start))
			break
		}

		wait := r.untilNextDue()
		if wait < r.tock {
			wait = r.tock
		}
		if r.limit > 0 {
			wait = min(wait, r.limit-r.clock.Since(start))
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
			case <-r.clock.After(wait):
			}
		}
		if ctx.Err() != nil {
			break
		}
		errs = append(errs, r.Once(ctx))
	}

	errs = append(errs, r.Close(context.WithoutCancel(ctx)))
	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	r.logger.Info("runner stopped", "elapsed", r.clock.Since(start))
	return errors.Join(errs...)
}

// Close sends a clean Exit to every remaining Doer and removes it.
func (r *Runner) Close(ctx context.Context) error {
	now := r.clock.Now()
	var errs []error
	for _, e := range r.entries {
		if err := r.step(ctx, e, domain.ControlExit, now); err != nil {
			errs = append(errs, err)
		}
	}
	r.entries = nil
	r.reportLive()
	return errors.Join(errs...)
}

// step sends one control to a Doer. Desire is reset to Recur before an Enter
// so the enter hook can still override it. A panicking hook is returned as a
// domain.PanicError; the Doer is Aborted by then and the next sweep drops it.
func (r *Runner) step(ctx context.Context, e *entry, control domain.Control, now time.Time) error {
	if control == domain.ControlEnter {
		e.doer.SetDesire(domain.ControlRecur)
	}
	state, err := stepDoer(ctx, e.doer, control)
	e.due = now.Add(tockDuration(e.doer.Tock()))

	r.logger.Debug("runner step", "doer", e.name, "control", control, "state", state, "done", e.doer.Done())
	if err != nil {
		r.logger.Error("doer failed", "doer", e.name, "error", err)
		err = fmt.Errorf("doer %q: %w", e.name, err)
	}

	if r.store != nil {
		snap := e.doer.Snapshot(now)
		snap.Name = e.name
		if saveErr := r.store.Save(ctx, snap); saveErr != nil {
			return errors.Join(err, fmt.Errorf("critical persistence error: %w", saveErr))
		}
	}
	return err
}

func stepDoer(ctx context.Context, d *doing.Doer, control domain.Control) (state domain.State, err error) {
	defer func() {
		if v := recover(); v != nil {
			state, err = d.State(), &domain.PanicError{Value: v}
		}
	}()
	return d.Step(ctx, control)
}

// sweep removes finished Doers.
func (r *Runner) sweep() {
	kept := r.entries[:0]
	for _, e := range r.entries {
		state, done := e.doer.State(), e.doer.Done()
		if e.doer.Stopped() || (state == domain.StateExited && done) {
			r.logger.Info("doer finished", "doer", e.name, "state", state, "done", done)
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	r.reportLive()
}

func (r *Runner) reportLive() {
	if r.metrics != nil {
		r.metrics.SetLive(len(r.entries))
	}
}

func (r *Runner) untilNextDue() time.Duration {
	now := r.clock.Now()
	next := time.Duration(math.MaxInt64)
	for _, e := range r.entries {
		if d := e.due.Sub(now); d < next {
			next = d
		}
	}
	if next < 0 {
		return 0
	}
	return next
}

// nextControl translates a Doer's desire into the control sent on its turn.
func nextControl(desire domain.Control) domain.Control {
	switch desire {
	case domain.ControlEnter, domain.ControlRecur, domain.ControlExit:
		return desire
	}
	return domain.ControlAbort
}

func tockDuration(tock float64) time.Duration {
	return time.Duration(tock * float64(time.Second))
}
