package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/typomata/pkg/domain"
)

// LogHooks returns hooks that write one record per resolution.
// Transitions are logged at info, failures at warn.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"machine", e.Machine,
				"handler", e.Handler,
				"from", e.From,
				"action", e.Action,
				"to", e.To,
				"direct", e.Direct,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			logger.WarnContext(ctx, "transition_failed",
				"machine", e.Machine,
				"handler", e.Handler,
				"state", e.State,
				"action", e.Action,
				"kind", e.Kind,
				"error", e.Err,
			)
		},
	}
}

// Chain combines hooks; each event is delivered to every hook in order.
func Chain(hooks ...domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnError: func(ctx context.Context, e *domain.ErrorEvent) {
			for _, h := range hooks {
				if h.OnError != nil {
					h.OnError(ctx, e)
				}
			}
		},
	}
}
