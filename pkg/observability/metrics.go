package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cohort/pkg/domain"
)

// Metrics exposes run activity as Prometheus collectors.
type Metrics struct {
	runsStarted  *prometheus.CounterVec
	runsFinished *prometheus.CounterVec
	runsFailed   *prometheus.CounterVec
	cycles       *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice with the same registerer reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cohort_runs_started_total",
			Help: "Total number of simulation runs started",
		}, []string{"chain"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cohort_runs_finished_total",
			Help: "Total number of simulation runs finished, by stop reason",
		}, []string{"chain", "reason"}),
		runsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cohort_runs_failed_total",
			Help: "Total number of simulation runs aborted by an error",
		}, []string{"chain"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cohort_cycles_total",
			Help: "Total number of cycles committed to traces",
		}, []string{"chain"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cohort_run_duration_seconds",
			Help:    "Duration of simulation runs",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"chain"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cohort_runs_in_flight",
			Help: "Number of simulation runs currently executing",
		}),
	}

	var err error
	if m.runsStarted, err = register(reg, m.runsStarted); err != nil {
		return nil, err
	}
	if m.runsFinished, err = register(reg, m.runsFinished); err != nil {
		return nil, err
	}
	if m.runsFailed, err = register(reg, m.runsFailed); err != nil {
		return nil, err
	}
	if m.cycles, err = register(reg, m.cycles); err != nil {
		return nil, err
	}
	if m.runDuration, err = register(reg, m.runDuration); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.runsStarted.WithLabelValues(e.Chain).Inc()
			m.inFlight.Inc()
		},
		OnCycle: func(_ context.Context, e *domain.CycleEvent) {
			m.cycles.WithLabelValues(e.Chain).Inc()
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.inFlight.Dec()
			m.runsFinished.WithLabelValues(e.Chain, string(e.Reason)).Inc()
			m.runDuration.WithLabelValues(e.Chain).Observe(e.Duration.Seconds())
		},
		OnRunError: func(_ context.Context, e *domain.RunEvent) {
			m.inFlight.Dec()
			m.runsFailed.WithLabelValues(e.Chain).Inc()
			m.runDuration.WithLabelValues(e.Chain).Observe(e.Duration.Seconds())
		},
	}
}
