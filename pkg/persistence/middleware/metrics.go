package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

type metricsMiddleware struct {
	next     ports.ResultStore
	backend  string
	duration *prometheus.HistogramVec
}

// NewMetricsMiddleware records the latency and outcome of every store call in
// cohort_store_operation_duration_seconds{backend,op,outcome}.
// Registering twice with the same registerer reuses the existing histogram.
func NewMetricsMiddleware(reg prometheus.Registerer, backend string) (Middleware, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cohort_store_operation_duration_seconds",
		Help:    "Duration of result store operations",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"backend", "op", "outcome"})

	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		duration = existing
	}

	return func(next ports.ResultStore) ports.ResultStore {
		return &metricsMiddleware{next: next, backend: backend, duration: duration}
	}, nil
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.duration.WithLabelValues(m.backend, op, outcome).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) Save(ctx context.Context, runID string, result *domain.RunResult) (err error) {
	defer func(start time.Time) { m.observe("save", start, err) }(time.Now())
	return m.next.Save(ctx, runID, result)
}

func (m *metricsMiddleware) Load(ctx context.Context, runID string) (res *domain.RunResult, err error) {
	defer func(start time.Time) { m.observe("load", start, err) }(time.Now())
	return m.next.Load(ctx, runID)
}

func (m *metricsMiddleware) Delete(ctx context.Context, runID string) (err error) {
	defer func(start time.Time) { m.observe("delete", start, err) }(time.Now())
	return m.next.Delete(ctx, runID)
}

func (m *metricsMiddleware) List(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { m.observe("list", start, err) }(time.Now())
	return m.next.List(ctx)
}
