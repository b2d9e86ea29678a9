package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpAdapter "github.com/aretw0/cohort/pkg/adapters/http"
	"github.com/aretw0/cohort/pkg/adapters/memory"
	"github.com/aretw0/cohort/pkg/loader"
	"github.com/aretw0/cohort/pkg/persistence/middleware"
)

// shutdownTimeout gives outstanding requests a deadline on shutdown.
const shutdownTimeout = 5 * time.Second

// LoadCatalog registers every model document (.yaml, .yml, .json) found
// directly in dir. An empty dir yields an empty catalog.
func LoadCatalog(dir string) (*memory.Catalog, error) {
	catalog, _ := memory.NewCatalog()
	if dir == "" {
		return catalog, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		model, err := loader.LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(model); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return catalog, nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	catalog, err := LoadCatalog(opts.ModelDir)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	var mws []middleware.Middleware
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		kind := opts.Store.Kind
		if kind == "" {
			kind = StoreMemory
		}
		instrument, err := middleware.NewMetricsMiddleware(reg, kind)
		if err != nil {
			return err
		}
		mws = append(mws, instrument)
	}

	backend, err := OpenBackend(opts.Store, logger, mws...)
	if err != nil {
		return err
	}
	defer backend.Close()

	serverOpts := []httpAdapter.Option{
		httpAdapter.WithCatalog(catalog),
		httpAdapter.WithRunManager(backend.Runs),
		httpAdapter.WithLogger(logger),
	}
	if reg != nil {
		serverOpts = append(serverOpts, httpAdapter.WithMetrics(reg))
	}
	handler, err := httpAdapter.NewHandler(serverOpts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage("Starting cohort server on %s", srv.Addr)
		printSystemMessage("Serving models: %s", strings.Join(catalog.Names(), ", "))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage("Server stopped gracefully")
		return nil
	}
}
