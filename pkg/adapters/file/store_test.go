package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cohort/pkg/adapters/file"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_KeepsTrace(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	trace := domain.NewTrace([]string{"Healthy", "Dead"}, []string{"LY"}, nil)
	require.NoError(t, trace.Append(domain.CycleRecord{
		Cycle:           0,
		Prevalence:      []float64{1000, 0},
		CycleRewards:    []float64{1000},
		CumRewards:      []float64{1000},
		CycleRewardsDis: []float64{1000},
		CumRewardsDis:   []float64{1000},
		Variables:       []float64{},
	}))
	require.NoError(t, store.Save(ctx, "r1", &domain.RunResult{RunID: "r1", Trace: trace}))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Trace)
	assert.Equal(t, []float64{1000}, loaded.Trace.Prevalence[0])
}

func TestFileStore_RejectsPathLikeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "../escape", &domain.RunResult{}))
	assert.Error(t, store.Save(ctx, "", &domain.RunResult{}))
}

func TestFileStore_ListIgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "r1", &domain.RunResult{RunID: "r1"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-r2-123.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, runs)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
