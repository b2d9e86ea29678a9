package runs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed run lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu      sync.Mutex
	refs    int
	running bool // a simulation currently owns this run ID
}

// Manager orchestrates access to run results, ensuring a run ID is simulated
// by at most one caller at a time. It uses reference counting to garbage
// collect unused locks.
type Manager struct {
	store ports.ResultStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new run Manager persisting into store.
func NewManager(store ports.ResultStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(runID) when done with the entry.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// Execute runs fn as the simulation for runID and saves its result.
// It fails fast with domain.ErrRunInProgress if the ID is already being
// simulated by this process; across replicas it waits on the distributed lock.
func (m *Manager) Execute(ctx context.Context, runID string, fn func(context.Context) (*domain.RunResult, error)) (*domain.RunResult, error) {
	entry := m.acquire(runID)
	defer m.release(runID)

	m.mu.Lock()
	if entry.running {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, runID)
	}
	entry.running = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		entry.running = false
		m.mu.Unlock()
	}()

	var result *domain.RunResult
	err := m.withDistributedLock(ctx, runID, func(ctx context.Context) error {
		var err error
		if result, err = fn(ctx); err != nil {
			return err
		}
		entry.mu.Lock()
		defer entry.mu.Unlock()
		if err := m.store.Save(ctx, runID, result); err != nil {
			return fmt.Errorf("failed to save run %s: %w", runID, err)
		}
		return nil
	})
	return result, err
}

// Load retrieves a stored result.
func (m *Manager) Load(ctx context.Context, runID string) (*domain.RunResult, error) {
	var result *domain.RunResult
	err := m.WithLock(ctx, runID, func(ctx context.Context) error {
		var err error
		result, err = m.store.Load(ctx, runID)
		return err
	})
	return result, err
}

// Save persists a result computed elsewhere.
func (m *Manager) Save(ctx context.Context, runID string, result *domain.RunResult) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Save(ctx, runID, result)
	})
}

// Delete removes a stored result.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	return m.WithLock(ctx, runID, func(ctx context.Context) error {
		return m.store.Delete(ctx, runID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying result store.
func (m *Manager) Store() ports.ResultStore {
	return m.store
}

// WithLock executes fn while holding the local lock for runID.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()
	return fn(ctx)
}

func (m *Manager) withDistributedLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	if m.locker == nil {
		return fn(ctx)
	}
	unlock, err := m.locker.Lock(ctx, runID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"run_id", runID,
				"err", err,
			)
		}
	}()
	return fn(ctx)
}
