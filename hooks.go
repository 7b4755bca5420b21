package doing

import (
	"context"

	"github.com/aretw0/doing/pkg/ports"
)

// HookFuncs adapts plain functions as ports.Hooks. Nil fields are no-ops.
type HookFuncs struct {
	OnEnter func(ctx context.Context, u ports.Unit) error
	OnRecur func(ctx context.Context, u ports.Unit) error
	OnExit  func(ctx context.Context, u ports.Unit, forced bool) error
}

var _ ports.Hooks = HookFuncs{}

// NopHooks does nothing on every hook.
var NopHooks = HookFuncs{}

func (h HookFuncs) Enter(ctx context.Context, u ports.Unit) error {
	if h.OnEnter == nil {
		return nil
	}
	return h.OnEnter(ctx, u)
}

func (h HookFuncs) Recur(ctx context.Context, u ports.Unit) error {
	if h.OnRecur == nil {
		return nil
	}
	return h.OnRecur(ctx, u)
}

func (h HookFuncs) Exit(ctx context.Context, u ports.Unit, forced bool) error {
	if h.OnExit == nil {
		return nil
	}
	return h.OnExit(ctx, u, forced)
}
