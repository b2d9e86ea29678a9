package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the models in --models over a JSON API, with live run events over SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{Store: storeOptions(cmd)}
		opts.ModelDir, _ = cmd.Flags().GetString("models")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.Metrics, _ = cmd.Flags().GetBool("metrics")
		port, _ := cmd.Flags().GetString("port")
		opts.Addr = ":" + port

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringP("models", "m", "", "Directory of model documents to serve")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
