package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/cohort/internal/presentation/tui"
)

// ListResults prints the stored run IDs, one per line.
func ListResults(ctx context.Context, store StoreOptions, logLevel string, out io.Writer) error {
	logger, err := createLogger(logLevel)
	if err != nil {
		return err
	}
	backend, err := OpenBackend(store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	ids, err := backend.Runs.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		printSystemMessage("No stored results.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// ShowResult prints a stored result.
func ShowResult(ctx context.Context, store StoreOptions, logLevel, runID string, jsonMode bool, out io.Writer) error {
	logger, err := createLogger(logLevel)
	if err != nil {
		return err
	}
	backend, err := OpenBackend(store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	res, err := backend.Runs.Load(ctx, runID)
	if err != nil {
		return err
	}
	if jsonMode {
		return writeJSON(out, res)
	}
	var states []string
	if res.Trace != nil {
		states = res.Trace.States
	}
	return writeMarkdown(out, tui.RunSummary(res, states))
}

// DeleteResult removes a stored result.
func DeleteResult(ctx context.Context, store StoreOptions, logLevel, runID string) error {
	logger, err := createLogger(logLevel)
	if err != nil {
		return err
	}
	backend, err := OpenBackend(store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	return backend.Runs.Delete(ctx, runID)
}
