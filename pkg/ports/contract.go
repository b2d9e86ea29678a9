package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newResult := func(id string) *domain.RunResult {
		return &domain.RunResult{
			RunID:             id,
			Chain:             "contract",
			Dimensions:        []string{"cost", "qaly"},
			ExpectedValues:    []float64{1250.5, 3.25},
			ExpectedValuesDis: []float64{1100.25, 3.0},
			Cycles:            4,
			StopReason:        domain.StopMaxCycles,
			FinalPrevalence:   []float64{600, 400},
			Parameters:        map[string]float64{"p_die": 0.1},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		result := newResult(runID)

		err := store.Save(ctx, runID, result)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, result.Chain, loaded.Chain)
		assert.Equal(t, result.ExpectedValues, loaded.ExpectedValues)
		assert.Equal(t, result.ExpectedValuesDis, loaded.ExpectedValuesDis)
		assert.Equal(t, result.StopReason, loaded.StopReason)
		assert.Equal(t, 0.1, loaded.Parameters["p_die"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, newResult(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, newResult(id1))
		_ = store.Save(ctx, id2, newResult(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
