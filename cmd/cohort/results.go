package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect stored run results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored run IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return cli.ListResults(cmd.Context(), storeOptions(cmd), level, os.Stdout)
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.ShowResult(cmd.Context(), storeOptions(cmd), level, args[0], jsonMode, os.Stdout)
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return cli.DeleteResult(cmd.Context(), storeOptions(cmd), level, args[0])
	},
}

func init() {
	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsDeleteCmd)
	rootCmd.AddCommand(resultsCmd)
}
