package ports

import (
	"context"

	"github.com/aretw0/cohort/pkg/domain"
)

// TraceSink consumes cycle records as a run commits them.
// The sink owns retention and export; records are passed by value and may be kept.
type TraceSink interface {
	Append(ctx context.Context, runID string, rec domain.CycleRecord) error
}

// ErrorLog receives failures with enough context to locate the faulty formula.
type ErrorLog interface {
	Record(ctx context.Context, runID string, err error)
}
