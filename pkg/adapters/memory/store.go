package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/cohort/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.RunResult
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.RunResult),
	}
}

// Save persists the result in memory.
func (s *Store) Save(ctx context.Context, runID string, result *domain.RunResult) error {
	// Copy to ensure isolation, similar to serialization
	copied := clone(result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[runID] = copied
	return nil
}

// Load retrieves the result from memory.
func (s *Store) Load(ctx context.Context, runID string) (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	// Copy on read so callers can't mutate stored results by pointer
	return clone(result), nil
}

// Delete removes the result.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}

// clone copies the result's slices and maps. Traces are append-only once a
// run has returned, so the pointer is shared.
func clone(r *domain.RunResult) *domain.RunResult {
	c := *r
	c.Dimensions = slices.Clone(r.Dimensions)
	c.ExpectedValues = slices.Clone(r.ExpectedValues)
	c.ExpectedValuesDis = slices.Clone(r.ExpectedValuesDis)
	c.FinalPrevalence = slices.Clone(r.FinalPrevalence)
	c.TerminationErrors = slices.Clone(r.TerminationErrors)
	c.Parameters = maps.Clone(r.Parameters)
	return &c
}
