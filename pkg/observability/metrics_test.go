package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/observability"
)

func emitRun(ctx context.Context, h domain.LifecycleHooks, cycles int, fail bool) {
	h.OnRunStart(ctx, &domain.RunEvent{RunID: "r", Chain: "Markov"})
	for i := 0; i < cycles; i++ {
		h.OnCycle(ctx, &domain.CycleEvent{RunID: "r", Chain: "Markov", Record: &domain.CycleRecord{Cycle: i}})
	}
	if fail {
		h.OnRunError(ctx, &domain.RunEvent{RunID: "r", Chain: "Markov", Err: errors.New("boom")})
		return
	}
	h.OnRunEnd(ctx, &domain.RunEvent{RunID: "r", Chain: "Markov", Cycles: cycles, Reason: domain.StopCondition, Duration: time.Millisecond})
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	emitRun(ctx, m.Hooks(), 5, false)
	emitRun(ctx, m.Hooks(), 2, true)

	count, err := testutil.GatherAndCount(reg, "cohort_runs_started_total", "cohort_runs_finished_total", "cohort_runs_failed_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	expected := `
# HELP cohort_cycles_total Total number of cycles committed to traces
# TYPE cohort_cycles_total counter
cohort_cycles_total{chain="Markov"} 7
# HELP cohort_runs_finished_total Total number of simulation runs finished, by stop reason
# TYPE cohort_runs_finished_total counter
cohort_runs_finished_total{chain="Markov",reason="condition"} 1
# HELP cohort_runs_in_flight Number of simulation runs currently executing
# TYPE cohort_runs_in_flight gauge
cohort_runs_in_flight 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected),
		"cohort_cycles_total", "cohort_runs_finished_total", "cohort_runs_in_flight"))
}

func TestMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	emitRun(ctx, first.Hooks(), 1, false)
	emitRun(ctx, second.Hooks(), 1, false)

	expected := `
# HELP cohort_runs_started_total Total number of simulation runs started
# TYPE cohort_runs_started_total counter
cohort_runs_started_total{chain="Markov"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "cohort_runs_started_total"))
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnRunStart: func(context.Context, *domain.RunEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnRunStart: func(context.Context, *domain.RunEvent) { order = append(order, "b") },
		OnRunEnd:   func(context.Context, *domain.RunEvent) { order = append(order, "b-end") },
	}

	h := observability.Combine(a, domain.LifecycleHooks{}, b)
	require.NotNil(t, h.OnRunStart)
	assert.Nil(t, h.OnCycle)

	h.OnRunStart(context.Background(), &domain.RunEvent{})
	h.OnRunEnd(context.Background(), &domain.RunEvent{})
	assert.Equal(t, []string{"a", "b", "b-end"}, order)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	emitRun(context.Background(), observability.LogHooks(logger), 1, true)

	out := buf.String()
	assert.Contains(t, out, "run_start")
	assert.Contains(t, out, "cycle")
	assert.Contains(t, out, "run_error")
	assert.Contains(t, out, "err=boom")
}
