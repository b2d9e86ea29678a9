package batch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = []domain.Parameter{
	{Name: "pDie", Expr: "0.1", Dist: &domain.DistSpec{Type: "uniform", Params: map[string]float64{"min": 0.05, "max": 0.15}}},
	{Name: "cost", Expr: "100"},
}

// echo reports the sampled pDie as the expected value.
func echo(_ context.Context, run batch.Run) (*domain.RunResult, error) {
	v := run.Parameters["pDie"]
	return &domain.RunResult{
		RunID:             run.ID,
		Dimensions:        []string{"p"},
		ExpectedValues:    []float64{v},
		ExpectedValuesDis: []float64{v / 2},
	}, nil
}

func TestLoadConfig(t *testing.T) {
	cfg, err := batch.LoadConfig("testdata/psa.yaml")
	require.NoError(t, err)
	assert.Equal(t, batch.Config{
		Operation:        batch.OperationPSA,
		Iterations:       20,
		Workers:          4,
		SeedIterationRNG: true,
		IterationSeed:    100,
		SeedParamRNG:     true,
		ParamSeed:        7,
		SampleParamSets:  true,
	}, cfg)
}

func TestConfig_Validate(t *testing.T) {
	cfg := batch.Config{Iterations: 50}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, batch.OperationRun, cfg.Operation)
	assert.Equal(t, 1, cfg.Iterations, "a plain run is a single iteration")
	assert.GreaterOrEqual(t, cfg.Workers, 1)

	bad := batch.Config{Operation: "sweep"}
	assert.ErrorContains(t, bad.Validate(), `unknown operation "sweep"`)

	zero := batch.Config{Operation: batch.OperationPSA}
	assert.ErrorContains(t, zero.Validate(), "iterations must be at least 1")
}

func TestExecute_Run(t *testing.T) {
	o, err := batch.New(batch.DefaultConfig(), params)
	require.NoError(t, err)

	var calls atomic.Int32
	report, err := o.Execute(context.Background(), "base", func(ctx context.Context, run batch.Run) (*domain.RunResult, error) {
		calls.Add(1)
		assert.Nil(t, run.Parameters, "base run keeps base values")
		assert.Equal(t, "base-0", run.ID)
		return echo(ctx, run)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, report.Succeeded)
}

func TestExecute_PSAIsReproducible(t *testing.T) {
	cfg := batch.Config{
		Operation:        batch.OperationPSA,
		Iterations:       50,
		Workers:          8,
		SeedParamRNG:     true,
		ParamSeed:        7,
		SeedIterationRNG: true,
		IterationSeed:    1000,
	}
	run := func(presample bool) *batch.Report {
		c := cfg
		c.SampleParamSets = presample
		o, err := batch.New(c, params)
		require.NoError(t, err)
		report, err := o.Execute(context.Background(), "psa", echo)
		require.NoError(t, err)
		return report
	}

	a, b := run(false), run(false)
	require.Equal(t, 50, a.Succeeded)
	for i := range a.Outcomes {
		assert.Equal(t, a.Outcomes[i].Run, b.Outcomes[i].Run)
		assert.Equal(t, int64(1000+i), a.Outcomes[i].Run.Seed)
		p := a.Outcomes[i].Run.Parameters["pDie"]
		assert.GreaterOrEqual(t, p, 0.05)
		assert.Less(t, p, 0.15)
		assert.NotContains(t, a.Outcomes[i].Run.Parameters, "cost")
	}

	pre := run(true)
	require.Len(t, pre.ParamSets, 50)
	for i := range pre.Outcomes {
		assert.Equal(t, a.Outcomes[i].Run.Parameters, pre.Outcomes[i].Run.Parameters, "both modes draw the same sequence")
	}
	assert.Nil(t, a.ParamSets)

	stats := a.ExpectedValues[0]
	assert.InDelta(t, 0.1, stats.Mean, 0.02)
	assert.LessOrEqual(t, stats.Min, stats.P025)
	assert.LessOrEqual(t, stats.P975, stats.Max)
	assert.InDelta(t, stats.Mean/2, a.ExpectedValuesDis[0].Mean, 1e-12)
}

func TestExecute_PartialFailure(t *testing.T) {
	o, err := batch.New(batch.Config{Operation: batch.OperationPSA, Iterations: 10, Workers: 3}, params)
	require.NoError(t, err)

	boom := errors.New("boom")
	report, err := o.Execute(context.Background(), "psa", func(ctx context.Context, run batch.Run) (*domain.RunResult, error) {
		if run.Iteration%3 == 0 {
			return nil, boom
		}
		return echo(ctx, run)
	})
	require.NoError(t, err)
	assert.Equal(t, 10, report.Runs)
	assert.Equal(t, 4, report.Failed)
	assert.Equal(t, 6, report.Succeeded)
	for _, o := range report.Errors() {
		assert.ErrorIs(t, o.Err, boom)
		assert.Equal(t, 0, o.Run.Iteration%3)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	o, err := batch.New(batch.Config{Operation: batch.OperationPSA, Iterations: 100, Workers: 1}, params)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	report, err := o.Execute(ctx, "psa", func(ctx context.Context, run batch.Run) (*domain.RunResult, error) {
		if run.Iteration == 4 {
			cancel()
		}
		return echo(ctx, run)
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 100, report.Runs)
	assert.Less(t, report.Succeeded, 100)
	assert.Equal(t, 100, report.Succeeded+report.Failed)
}

func TestNew_InvalidDistribution(t *testing.T) {
	bad := []domain.Parameter{{Name: "s", Dist: &domain.DistSpec{Type: "halfnormal", Params: map[string]float64{"sigma": -1}}}}
	_, err := batch.New(batch.Config{Operation: batch.OperationPSA, Iterations: 2}, bad)
	assert.ErrorContains(t, err, `parameter "s"`)
	assert.ErrorContains(t, err, "σ should be >0")
}
