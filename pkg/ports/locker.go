package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates run IDs across multiple instances (replicas),
// so that a run ID is simulated by at most one worker at a time.
type DistributedLocker interface {
	// Lock attempts to acquire the lock for key (a run ID).
	// It blocks until the lock is acquired or the context is canceled.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
