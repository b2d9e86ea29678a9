package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <model>",
	Short: "Simulate a model once",
	Long:  `Loads the model document, runs the cohort until termination and prints the expected values.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, _ := cmd.Flags().GetStringArray("param")
		overrides, err := parseParams(params)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{
			ModelPath:  args[0],
			Parameters: overrides,
			Seeded:     cmd.Flags().Changed("seed"),
			Store:      storeOptions(cmd),
		}
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.RunID, _ = cmd.Flags().GetString("run-id")
		opts.Seed, _ = cmd.Flags().GetInt64("seed")
		opts.TraceCSV, _ = cmd.Flags().GetString("trace-csv")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.RunSimulation(ctx, opts, os.Stdout)
		if sig := ctx.Signal(); sig != nil && err != nil {
			return fmt.Errorf("interrupted by %v: %w", sig, err)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("run-id", "", "Run identifier (random when empty)")
	runCmd.Flags().Int64("seed", 0, "Seed for rand() in formulas")
	runCmd.Flags().StringArrayP("param", "p", nil, "Override a parameter base value (name=value), repeatable")
	runCmd.Flags().String("trace-csv", "", "Write the cycle trace to this CSV file")
}

// parseParams turns name=value pairs into an override map.
func parseParams(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", p, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
