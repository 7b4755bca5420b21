package doing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/aretw0/doing/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct {
	events []string
}

func (tr *trace) hooks() doing.HookFuncs {
	return doing.HookFuncs{
		OnEnter: func(ctx context.Context, u ports.Unit) error {
			tr.events = append(tr.events, "enter")
			return nil
		},
		OnRecur: func(ctx context.Context, u ports.Unit) error {
			tr.events = append(tr.events, "recur")
			return nil
		},
		OnExit: func(ctx context.Context, u ports.Unit, forced bool) error {
			if forced {
				tr.events = append(tr.events, "exit:forced")
			} else {
				tr.events = append(tr.events, "exit")
			}
			return nil
		},
	}
}

func TestDoer_Construction(t *testing.T) {
	d := doing.New()

	assert.Equal(t, domain.StateExited, d.State())
	assert.True(t, d.Done())
	assert.Equal(t, domain.ControlExit, d.Desire())
	assert.Equal(t, 0.0, d.Tock())
}

func TestDoer_TockSign(t *testing.T) {
	a := doing.New(doing.WithTock(-2.5))
	b := doing.New(doing.WithTock(2.5))
	assert.Equal(t, a.Tock(), b.Tock())

	a.SetTock(-0.1)
	assert.Equal(t, 0.1, a.Tock())
}

func TestDoer_FullCycle(t *testing.T) {
	tr := &trace{}
	d := doing.New(doing.WithHooks(tr.hooks()), doing.WithName("cycle"))
	ctx := context.Background()

	state, err := d.Step(ctx, domain.ControlRecur)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRecurring, state)
	assert.False(t, d.Done())

	state, err = d.Step(ctx, domain.ControlExit)
	require.NoError(t, err)
	assert.Equal(t, domain.StateExited, state)
	assert.True(t, d.Done())

	state, err = d.Step(ctx, domain.ControlRecur)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRecurring, state)
	assert.False(t, d.Done())

	assert.Equal(t, []string{"enter", "recur", "exit", "enter", "recur"}, tr.events)
	assert.Equal(t, "cycle", d.Name())
}

func TestDoer_UnrecognizedControl_Aborts(t *testing.T) {
	tr := &trace{}
	d := doing.New(doing.WithHooks(tr.hooks()))
	ctx := context.Background()

	_, err := d.Step(ctx, domain.ControlRecur)
	require.NoError(t, err)

	state, err := d.Step(ctx, domain.Control(99))
	require.NoError(t, err)
	assert.Equal(t, domain.StateAborted, state)
	assert.True(t, d.Stopped())
	assert.Equal(t, "exit:forced", tr.events[len(tr.events)-1])

	_, err = d.Step(ctx, domain.ControlEnter)
	assert.ErrorIs(t, err, domain.ErrExhausted)
}

func TestDoer_HookErrorPropagates(t *testing.T) {
	cause := errors.New("cannot open")
	d := doing.New(doing.WithHooks(doing.HookFuncs{
		OnEnter: func(ctx context.Context, u ports.Unit) error { return cause },
	}))

	state, err := d.Step(context.Background(), domain.ControlEnter)

	assert.Equal(t, domain.StateAborted, state)
	assert.ErrorIs(t, err, cause)
	var hookErr *domain.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, domain.HookEnter, hookErr.Hook)
}

func TestNopHooks(t *testing.T) {
	ctx := context.Background()
	d := doing.New(doing.WithHooks(doing.NopHooks))

	assert.NoError(t, doing.NopHooks.Enter(ctx, d))
	assert.NoError(t, doing.NopHooks.Recur(ctx, d))
	assert.NoError(t, doing.NopHooks.Exit(ctx, d, true))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, doing.Version)
}
