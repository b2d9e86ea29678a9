package middleware

import (
	"context"
	"log/slog"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.ResultStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ResultStore) ports.ResultStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, runID string, err error) {
	if err != nil {
		m.logger.DebugContext(ctx, "store call failed", "op", op, "run_id", runID, "err", err)
		return
	}
	m.logger.DebugContext(ctx, "store call", "op", op, "run_id", runID)
}

func (m *loggingMiddleware) Save(ctx context.Context, runID string, result *domain.RunResult) error {
	err := m.next.Save(ctx, runID, result)
	m.log(ctx, "save", runID, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, runID string) (*domain.RunResult, error) {
	res, err := m.next.Load(ctx, runID)
	m.log(ctx, "load", runID, err)
	return res, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, runID string) error {
	err := m.next.Delete(ctx, runID)
	m.log(ctx, "delete", runID, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	ids, err := m.next.List(ctx)
	m.log(ctx, "list", "", err)
	return ids, err
}
