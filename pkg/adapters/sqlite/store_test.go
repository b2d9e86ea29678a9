package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/cohort/pkg/adapters/sqlite"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, newStore(t))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	store, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "r1", &domain.RunResult{RunID: "r1", Chain: "Markov", ExpectedValues: []float64{4095.1}}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []float64{4095.1}, res.ExpectedValues)
}

func TestSQLiteStore_TraceSink(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var sink ports.TraceSink = store
	for _, cycle := range []int{2, 0, 1} {
		require.NoError(t, sink.Append(ctx, "r1", domain.CycleRecord{Cycle: cycle, CumRewards: []float64{float64(cycle)}}))
	}
	require.NoError(t, sink.Append(ctx, "r2", domain.CycleRecord{Cycle: 0}))

	recs, err := store.Records(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, i, rec.Cycle)
	}

	require.NoError(t, store.Save(ctx, "r1", &domain.RunResult{RunID: "r1"}))
	require.NoError(t, store.Delete(ctx, "r1"))
	recs, err = store.Records(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = store.Records(ctx, "r2")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
