package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cohort/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Cohort is a Markov cohort simulation engine",
	Long: `Cohort runs Markov state-transition models described in YAML or JSON,
accumulating rewards per dimension over discrete cycles.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level (debug, info, warn, error); empty disables logging")
	flags.String("store", cli.StoreMemory, "Result store: memory, file, sqlite or redis")
	flags.String("store-path", "", "Run directory (file) or database file (sqlite)")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.Int("redis-db", 0, "Redis database number")
	flags.Bool("lock", false, "Guard run IDs with a distributed lock (redis only)")
	flags.Bool("json", false, "Print machine-readable JSON")
	flags.BoolP("quiet", "q", false, "Suppress the report")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	flags := cmd.Flags()
	kind, _ := flags.GetString("store")
	path, _ := flags.GetString("store-path")
	addr, _ := flags.GetString("redis-addr")
	db, _ := flags.GetInt("redis-db")
	lock, _ := flags.GetBool("lock")
	return cli.StoreOptions{
		Kind:            kind,
		Path:            path,
		RedisAddr:       addr,
		RedisDB:         db,
		DistributedLock: lock,
	}
}
