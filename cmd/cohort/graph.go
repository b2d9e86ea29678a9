package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <model>",
	Short: "Export the model tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the chain, its states and their transitions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overlay, _ := cmd.Flags().GetBool("overlay")
		return cli.Graph(cmd.Context(), args[0], overlay, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("overlay", false, "Simulate once and annotate states with final prevalence")
}
