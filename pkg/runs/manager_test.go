package runs_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/cohort/pkg/adapters/memory"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/aretw0/cohort/pkg/runs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ExecuteSavesResult(t *testing.T) {
	mgr := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	res, err := mgr.Execute(ctx, "r1", func(context.Context) (*domain.RunResult, error) {
		return &domain.RunResult{RunID: "r1", ExpectedValues: []float64{4095.1}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.RunID)

	loaded, err := mgr.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []float64{4095.1}, loaded.ExpectedValues)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

func TestManager_ExecuteFailureIsNotSaved(t *testing.T) {
	mgr := runs.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := mgr.Execute(ctx, "r1", func(context.Context) (*domain.RunResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = mgr.Load(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestManager_RejectsConcurrentRunOfSameID(t *testing.T) {
	mgr := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	started := make(chan struct{})
	finish := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := mgr.Execute(ctx, "shared", func(context.Context) (*domain.RunResult, error) {
			close(started)
			<-finish
			return &domain.RunResult{RunID: "shared"}, nil
		})
		assert.NoError(t, err)
	}()

	<-started
	_, err := mgr.Execute(ctx, "shared", func(context.Context) (*domain.RunResult, error) {
		t.Error("second run must not start")
		return nil, nil
	})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)

	// A different ID is unaffected.
	_, err = mgr.Execute(ctx, "other", func(context.Context) (*domain.RunResult, error) {
		return &domain.RunResult{RunID: "other"}, nil
	})
	assert.NoError(t, err)

	close(finish)
	wg.Wait()

	// Once finished the ID can be simulated again.
	_, err = mgr.Execute(ctx, "shared", func(context.Context) (*domain.RunResult, error) {
		return &domain.RunResult{RunID: "shared"}, nil
	})
	assert.NoError(t, err)
}

type countingLocker struct {
	locks, unlocks atomic.Int32
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locks.Add(1)
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &countingLocker{}
	mgr := runs.NewManager(memory.NewStore(), runs.WithLocker(locker), runs.WithLockTTL(time.Second))

	_, err := mgr.Execute(context.Background(), "r1", func(context.Context) (*domain.RunResult, error) {
		return &domain.RunResult{RunID: "r1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), locker.locks.Load())
	assert.Equal(t, int32(1), locker.unlocks.Load())
}
