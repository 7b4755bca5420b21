package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/doing/pkg/domain"
)

// Chain merges several LifecycleHooks into one, calling them in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnHookError: func(ctx context.Context, e *domain.HookErrorEvent) {
			for _, h := range hooks {
				if h.OnHookError != nil {
					h.OnHookError(ctx, e)
				}
			}
		},
	}
}

// LogHooks returns lifecycle callbacks that write events to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"doer", e.DoerName,
				"control", e.Control,
				"from", e.From,
				"to", e.To,
				"done", e.Done,
			)
		},
		OnHookError: func(ctx context.Context, e *domain.HookErrorEvent) {
			logger.ErrorContext(ctx, "hook_error",
				"doer", e.DoerName,
				"hook", e.Hook,
				"forced", e.Forced,
				"error", e.Err,
			)
		},
	}
}
