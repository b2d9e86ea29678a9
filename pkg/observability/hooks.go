package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cohort/pkg/domain"
)

// Combine merges several hook sets into one. Callbacks run in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnRunStart = chain(out.OnRunStart, h.OnRunStart)
		out.OnCycle = chain(out.OnCycle, h.OnCycle)
		out.OnRunEnd = chain(out.OnRunEnd, h.OnRunEnd)
		out.OnRunError = chain(out.OnRunError, h.OnRunError)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks logs run boundaries at info level and every cycle at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "run_id", e.RunID, "chain", e.Chain)
		},
		OnCycle: func(ctx context.Context, e *domain.CycleEvent) {
			logger.DebugContext(ctx, "cycle",
				"run_id", e.RunID,
				"cycle", e.Record.Cycle,
				"prevalence", e.Record.Prevalence,
			)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_end",
				"run_id", e.RunID,
				"cycles", e.Cycles,
				"reason", e.Reason,
				"duration", e.Duration,
			)
		},
		OnRunError: func(ctx context.Context, e *domain.RunEvent) {
			logger.ErrorContext(ctx, "run_error", "run_id", e.RunID, "cycles", e.Cycles, "err", e.Err)
		},
	}
}
