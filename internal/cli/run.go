package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/cohort"
	"github.com/aretw0/cohort/internal/presentation/tui"
	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/observability"
)

// createEngine loads a model with standard CLI conventions: the configured
// logger, debug hooks when the logger is verbose, and the chosen result store.
func createEngine(ctx context.Context, modelPath string, logger *slog.Logger, backend *Backend) (*cohort.Engine, error) {
	opts := []cohort.Option{
		cohort.WithLogger(logger),
		cohort.WithRunManager(backend.Runs),
	}
	if backend.Sink != nil {
		opts = append(opts, cohort.WithTraceSink(backend.Sink))
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, cohort.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	eng, err := cohort.Load(modelPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading model: %w", err)
	}
	return eng, nil
}

func printBanner(jsonMode, quiet bool) {
	if !jsonMode && !quiet && isTerminal(os.Stderr) {
		tui.PrintBanner(os.Stderr, cohort.Version)
	}
}

// RunSimulation simulates the model once, persists the result and prints it to out.
func RunSimulation(ctx context.Context, opts RunOptions, out io.Writer) (*domain.RunResult, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(opts.Store, logger)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	eng, err := createEngine(ctx, opts.ModelPath, logger, backend)
	if err != nil {
		return nil, err
	}
	printBanner(opts.JSON, opts.Quiet)

	runOpts := []cohort.RunOption{cohort.WithParameters(opts.Parameters)}
	if opts.RunID != "" {
		runOpts = append(runOpts, cohort.WithRunID(opts.RunID))
	}
	if opts.Seeded {
		runOpts = append(runOpts, cohort.WithSeed(opts.Seed))
	}
	res, err := eng.Simulate(ctx, runOpts...)
	if err != nil {
		return nil, err
	}

	if opts.TraceCSV != "" {
		if err := writeTraceFile(opts.TraceCSV, res.Trace); err != nil {
			return res, err
		}
		logger.Info("trace written", "path", opts.TraceCSV, "cycles", res.Trace.Len())
	}

	switch {
	case opts.JSON:
		err = writeJSON(out, res.Summary())
	case !opts.Quiet:
		err = writeMarkdown(out, tui.RunSummary(res, eng.States()))
	}
	return res, err
}

// RunBatch executes a run or PSA batch described by a config file and prints
// the aggregated report to out. On cancellation the partial report is still printed.
func RunBatch(ctx context.Context, opts BatchOptions, out io.Writer) (*batch.Report, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg := batch.DefaultConfig()
	if opts.ConfigPath != "" {
		if cfg, err = batch.LoadConfig(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if opts.Iterations > 0 {
		cfg.Iterations = opts.Iterations
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	backend, err := OpenBackend(opts.Store, logger)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	eng, err := createEngine(ctx, opts.ModelPath, logger, backend)
	if err != nil {
		return nil, err
	}
	printBanner(opts.JSON, opts.Quiet)

	report, runErr := eng.Batch(ctx, cfg, opts.Prefix)
	if report == nil {
		return nil, runErr
	}
	if runErr != nil && !opts.Quiet {
		printSystemMessage("Batch interrupted after %d of %d runs.", report.Succeeded+report.Failed, report.Runs)
	}

	switch {
	case opts.JSON:
		err = writeJSON(out, report)
	case !opts.Quiet:
		err = writeMarkdown(out, tui.BatchSummary(report))
	}
	if runErr != nil {
		return report, runErr
	}
	return report, err
}
