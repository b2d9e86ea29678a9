package ports

import (
	"context"

	"github.com/aretw0/cohort/pkg/domain"
)

// ResultStore defines the interface for persisting run results.
type ResultStore interface {
	// Save persists the result under its run ID.
	Save(ctx context.Context, runID string, result *domain.RunResult) error

	// Load retrieves a result.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunResult, error)

	// Delete removes a result.
	Delete(ctx context.Context, runID string) error

	// List returns the stored run IDs.
	List(ctx context.Context) ([]string, error)
}
