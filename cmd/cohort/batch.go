package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

var batchCmd = &cobra.Command{
	Use:     "batch <model>",
	Aliases: []string{"psa"},
	Short:   "Run a batch or probabilistic sensitivity analysis",
	Long: `Executes the batch described by --config. With operation "psa" every
iteration samples the parameter distributions and the report aggregates
mean, standard deviation and the 95% interval of each expected value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.BatchOptions{
			ModelPath: args[0],
			Store:     storeOptions(cmd),
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.Prefix, _ = cmd.Flags().GetString("prefix")
		opts.Iterations, _ = cmd.Flags().GetInt("iterations")
		opts.Workers, _ = cmd.Flags().GetInt("workers")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err := cli.RunBatch(ctx, opts, os.Stdout)
		if sig := ctx.Signal(); sig != nil && err != nil {
			return fmt.Errorf("interrupted by %v: %w", sig, err)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("config", "c", "", "Batch configuration file (YAML or JSON)")
	batchCmd.Flags().String("prefix", "", "Run ID prefix (random when empty)")
	batchCmd.Flags().IntP("iterations", "n", 0, "Override the number of iterations")
	batchCmd.Flags().IntP("workers", "w", 0, "Override the number of concurrent workers")
}
