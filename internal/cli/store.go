package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/cohort/pkg/adapters/file"
	"github.com/aretw0/cohort/pkg/adapters/memory"
	"github.com/aretw0/cohort/pkg/adapters/redis"
	"github.com/aretw0/cohort/pkg/adapters/sqlite"
	"github.com/aretw0/cohort/pkg/persistence/middleware"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/aretw0/cohort/pkg/runs"
)

// Backend bundles the persistence pieces chosen on the command line.
type Backend struct {
	Runs *runs.Manager
	// Sink receives cycle records as runs commit them. Nil for stores that keep
	// the trace inside the result.
	Sink   ports.TraceSink
	closer func() error
}

// Close releases the store's connections.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// OpenBackend creates the result store described by opts, wrapped in mws.
// Store calls are logged when the logger is at debug level.
func OpenBackend(opts StoreOptions, logger *slog.Logger, mws ...middleware.Middleware) (*Backend, error) {
	b := &Backend{}
	var store ports.ResultStore
	managerOpts := []runs.Option{runs.WithLogger(logger)}

	switch opts.Kind {
	case "", StoreMemory:
		store = memory.NewStore()
	case StoreFile:
		store = file.New(opts.Path)
	case StoreSQLite:
		s, err := sqlite.NewStore(opts.Path)
		if err != nil {
			return nil, err
		}
		store, b.Sink, b.closer = s, s, s.Close
	case StoreRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("--redis-addr is required for the redis store")
		}
		s := redis.New(opts.RedisAddr, "", opts.RedisDB)
		store, b.Sink, b.closer = s, s, s.Close
		if opts.DistributedLock {
			managerOpts = append(managerOpts, runs.WithLocker(redis.NewLocker(s.Client(), redis.DefaultPrefix)))
		}
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, file, sqlite or redis)", opts.Kind)
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		mws = append(mws, middleware.NewLoggingMiddleware(logger))
	}
	b.Runs = runs.NewManager(middleware.Chain(store, mws...), managerOpts...)
	logger.Debug("result store ready", "store", opts.Kind)
	return b, nil
}
