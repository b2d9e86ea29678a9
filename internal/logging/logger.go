package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/cohort/pkg/domain"
)

// New creates a configured application logger.
// It writes to Stderr so that results printed on Stdout stay machine readable.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a flag value (debug, info, warn, error) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// ErrorLog reports run errors through a structured logger, keeping the chain
// and node context of typed model errors as separate attributes.
type ErrorLog struct {
	logger *slog.Logger
}

// NewErrorLog returns an ErrorLog writing to logger.
func NewErrorLog(logger *slog.Logger) *ErrorLog {
	return &ErrorLog{logger: logger}
}

// Record logs err at warn level.
func (l *ErrorLog) Record(ctx context.Context, runID string, err error) {
	attrs := []any{"run_id", runID}
	var evalErr *domain.EvaluationError
	var probErr *domain.ProbabilityError
	switch {
	case errors.As(err, &evalErr):
		attrs = append(attrs, "chain", evalErr.Chain, "node", evalErr.Node, "formula", evalErr.Formula)
	case errors.As(err, &probErr):
		attrs = append(attrs, "chain", probErr.Chain, "node", probErr.Node, "sum", probErr.Sum)
	}
	attrs = append(attrs, "err", err)
	l.logger.WarnContext(ctx, "run error", attrs...)
}
