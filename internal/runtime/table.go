package runtime

import (
	"context"

	"github.com/aretw0/doing/pkg/domain"
)

// action performs one cell of the transition table.
// An error aborts the machine through unwind.
type action func(ctx context.Context, m *Machine) error

// table is switched on control first, then on state. Cells missing for a
// known control are illegal and route to the forced abort path.
//
// Status cycles:
//
//	exited -> entered -> recurring -> exited
//	exited -> entered -> exited -> entered
//	exited -> entered -> recurring -> exited -> aborted
var table = map[domain.Control]map[domain.State]action{
	domain.ControlRecur: {
		domain.StateExited:    enterThenRecur,
		domain.StateEntered:   recurAgain,
		domain.StateRecurring: recurAgain,
	},
	domain.ControlEnter: {
		domain.StateExited:    enterFresh,
		domain.StateEntered:   noop,
		domain.StateRecurring: reenter,
	},
	domain.ControlExit: {
		domain.StateExited:    noop,
		domain.StateEntered:   exitClean,
		domain.StateRecurring: exitClean,
		domain.StateAborted:   noop,
	},
	domain.ControlAbort: {
		domain.StateExited:    abort,
		domain.StateEntered:   abort,
		domain.StateRecurring: abort,
		domain.StateAborted:   abort,
	},
}

// lookup returns the action for (control, state). Unknown controls use the abort row.
func lookup(control domain.Control, state domain.State) (action, bool) {
	row, ok := table[control]
	if !ok {
		row = table[domain.ControlAbort]
	}
	act, ok := row[state]
	return act, ok
}

func noop(context.Context, *Machine) error { return nil }

// enterThenRecur auto-enters on recur from exited.
func enterThenRecur(ctx context.Context, m *Machine) error {
	if err := m.enter(ctx); err != nil {
		return err
	}
	return m.recur(ctx)
}

func recurAgain(ctx context.Context, m *Machine) error {
	return m.recur(ctx)
}

func enterFresh(ctx context.Context, m *Machine) error {
	return m.enter(ctx)
}

// reenter forces an exit before entering again. done stays false.
func reenter(ctx context.Context, m *Machine) error {
	if err := m.exit(ctx, true); err != nil {
		return err
	}
	return m.enter(ctx)
}

func exitClean(ctx context.Context, m *Machine) error {
	if err := m.exit(ctx, false); err != nil {
		return err
	}
	m.desire = domain.ControlExit
	return nil
}

func abort(ctx context.Context, m *Machine) error {
	if m.state.Live() {
		if err := m.exit(ctx, true); err != nil {
			return err
		}
	}
	m.halt()
	return nil
}
