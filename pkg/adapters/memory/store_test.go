package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/cohort/pkg/adapters/memory"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunResultStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	res := &domain.RunResult{RunID: "r1", ExpectedValues: []float64{1, 2}}
	require.NoError(t, store.Save(ctx, "r1", res))

	res.ExpectedValues[0] = 99
	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, loaded.ExpectedValues)

	loaded.ExpectedValues[1] = 42
	again, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, again.ExpectedValues)
}

func TestCatalog(t *testing.T) {
	c, err := memory.NewCatalog(&domain.Model{Name: "b"}, &domain.Model{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Names())

	m, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name)

	_, err = c.Get("zzz")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	assert.Error(t, c.Register(&domain.Model{Name: "a"}))
	assert.Error(t, c.Register(&domain.Model{}))
}
