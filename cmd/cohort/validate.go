package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <model>",
	Short: "Check a model for structural errors",
	Long:  `Loads and compiles the model, reporting unknown targets, bad formulas and misplaced nodes.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
