package runtime

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/aretw0/doing/internal/logging"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
)

// Machine is the resumable state machine behind a Doer.
// It advances exactly one transition per Step and is not safe for concurrent use.
type Machine struct {
	hooks     ports.Hooks
	lifecycle domain.LifecycleHooks
	logger    *slog.Logger
	name      string

	state  domain.State
	desire domain.Control
	done   bool
	tock   float64

	stopped bool
	steps   int

	// hook currently running, used to attribute panics
	active       domain.Hook
	activeForced bool
}

var _ ports.Unit = (*Machine)(nil)

// Option configures a Machine.
type Option func(*Machine)

// WithHooks sets the unit's lifecycle hooks. Nil keeps the no-op default.
func WithHooks(h ports.Hooks) Option {
	return func(m *Machine) {
		if h != nil {
			m.hooks = h
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.lifecycle = hooks
	}
}

// WithLogger sets the structured logger. Nil keeps the no-op default.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithName labels the machine in logs and events.
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// WithTock sets the initial desired interval.
func WithTock(tock float64) Option {
	return func(m *Machine) {
		m.SetTock(tock)
	}
}

// NewMachine creates a machine resting in Exited, done, with Exit as its desire.
// It is immediately ready to accept its first control.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		hooks:  nopHooks{},
		logger: logging.NewNop(),
		state:  domain.StateExited,
		desire: domain.ControlExit,
		done:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.name != "" {
		m.logger = m.logger.With("doer", m.name)
	}
	return m
}

// Step sends control into the machine, runs one transition and returns the resulting state.
//
// A hook failure aborts the machine: a live unit gets a forced exit, the state
// becomes Aborted and the failure is returned. A panicking hook gets the same
// cleanup and the panic is re-raised. Once the machine has stopped every call
// returns domain.ErrExhausted.
func (m *Machine) Step(ctx context.Context, control domain.Control) (domain.State, error) {
	if m.stopped {
		return m.state, domain.ErrExhausted
	}

	from := m.state
	m.steps++

	var err error
	var recovered any
	act, ok := lookup(control, m.state)
	if !ok {
		m.logger.Warn("illegal control for state, aborting", "control", control, "state", m.state)
		err = m.unwind(ctx, nil)
	} else if recovered, err = m.run(ctx, act); err != nil {
		err = m.unwind(ctx, err)
	}

	m.emitTransition(ctx, control, from)
	if recovered != nil {
		panic(recovered)
	}
	return m.state, err
}

// run executes one table action, converting a hook panic into a HookError.
func (m *Machine) run(ctx context.Context, act action) (recovered any, err error) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			err = &domain.HookError{Hook: m.active, Forced: m.activeForced, Err: &domain.PanicError{Value: r}}
		}
	}()
	return nil, act(ctx, m)
}

// State returns the last state reached by a completed transition.
func (m *Machine) State() domain.State {
	return m.state
}

// Desire returns the control the unit proposes for its next step.
func (m *Machine) Desire() domain.Control {
	return m.desire
}

// SetDesire changes the proposed control.
func (m *Machine) SetDesire(c domain.Control) {
	m.desire = c
}

// Done reports whether the unit completed with a clean exit.
func (m *Machine) Done() bool {
	return m.done
}

// Tock returns the desired interval until the next step; 0 means asap.
func (m *Machine) Tock() float64 {
	return m.tock
}

// SetTock stores the absolute value of tock.
func (m *Machine) SetTock(tock float64) {
	m.tock = math.Abs(tock)
}

// Stopped reports whether the machine refuses further controls.
func (m *Machine) Stopped() bool {
	return m.stopped
}

// Steps returns how many controls were accepted.
func (m *Machine) Steps() int {
	return m.steps
}

// Name returns the label given with WithName.
func (m *Machine) Name() string {
	return m.name
}

// Snapshot captures the current driver-visible view.
func (m *Machine) Snapshot(now time.Time) domain.Snapshot {
	return domain.Snapshot{
		Name:      m.name,
		State:     m.state,
		Desire:    m.desire,
		Done:      m.done,
		Tock:      m.tock,
		Steps:     m.steps,
		UpdatedAt: now,
	}
}

// enter runs the enter hook after clearing done.
func (m *Machine) enter(ctx context.Context) error {
	m.done = false
	m.active, m.activeForced = domain.HookEnter, false
	if err := m.hooks.Enter(ctx, m); err != nil {
		return &domain.HookError{Hook: domain.HookEnter, Err: err}
	}
	m.state = domain.StateEntered
	return nil
}

func (m *Machine) recur(ctx context.Context) error {
	m.active, m.activeForced = domain.HookRecur, false
	if err := m.hooks.Recur(ctx, m); err != nil {
		return &domain.HookError{Hook: domain.HookRecur, Err: err}
	}
	m.state = domain.StateRecurring
	return nil
}

// exit runs the exit hook and moves to Exited.
// Only a clean exit marks the unit done.
func (m *Machine) exit(ctx context.Context, forced bool) error {
	m.active, m.activeForced = domain.HookExit, forced
	if err := m.hooks.Exit(ctx, m, forced); err != nil {
		return &domain.HookError{Hook: domain.HookExit, Forced: forced, Err: err}
	}
	if !forced {
		m.done = true
	}
	m.state = domain.StateExited
	return nil
}

// halt parks the machine in its terminal state.
func (m *Machine) halt() {
	m.state = domain.StateAborted
	m.desire = domain.ControlAbort
	m.stopped = true
}

// unwind guarantees the machine ends in Aborted whatever went wrong.
// A live unit gets a forced exit first; its failure is joined to cause.
func (m *Machine) unwind(ctx context.Context, cause error) error {
	errs := []error{cause}
	if m.state.Live() {
		if err := m.safeForcedExit(ctx); err != nil {
			errs = append(errs, err)
		}
		m.state = domain.StateExited
	}
	m.halt()

	err := errors.Join(errs...)
	if err != nil {
		m.logger.Error("doer aborted after hook failure", "error", err)
		m.emitHookError(ctx, err)
	}
	return err
}

func (m *Machine) safeForcedExit(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.HookError{Hook: domain.HookExit, Forced: true, Err: &domain.PanicError{Value: r}}
		}
	}()
	return m.exit(ctx, true)
}

func (m *Machine) emitTransition(ctx context.Context, control domain.Control, from domain.State) {
	m.logger.Debug("doer step", "control", control, "from", from, "to", m.state, "done", m.done)
	if m.lifecycle.OnTransition == nil {
		return
	}
	m.lifecycle.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventTransition,
			DoerName:  m.name,
		},
		Control: control,
		From:    from,
		To:      m.state,
		Done:    m.done,
	})
}

func (m *Machine) emitHookError(ctx context.Context, err error) {
	if m.lifecycle.OnHookError == nil {
		return
	}
	evt := &domain.HookErrorEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventHookError,
			DoerName:  m.name,
		},
		Err: err.Error(),
	}
	var hookErr *domain.HookError
	if errors.As(err, &hookErr) {
		evt.Hook = hookErr.Hook
		evt.Forced = hookErr.Forced
	}
	m.lifecycle.OnHookError(ctx, evt)
}

type nopHooks struct{}

func (nopHooks) Enter(context.Context, ports.Unit) error      { return nil }
func (nopHooks) Recur(context.Context, ports.Unit) error      { return nil }
func (nopHooks) Exit(context.Context, ports.Unit, bool) error { return nil }
