// Command planner runs a travel planner instance: it keeps the trip document
// in a local SQLite file, serves the planner API, and optionally shares the
// trip with other planners through the bin store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkordes/travel-planner/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dbPath string
		cfg    config.PlannerConfig
	)

	rootCmd := &cobra.Command{
		Use:          "planner",
		Short:        "Travel planner with optional shared trips",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A .env file is optional; real environment variables win.
			_ = godotenv.Load()

			loaded, err := config.LoadPlanner()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if cmd.Flags().Changed("db") {
				loaded.DBPath = dbPath
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "planner.db", "local database path (overrides PLANNER_DB_PATH)")

	cfgFn := func() config.PlannerConfig { return cfg }
	rootCmd.AddCommand(serveCmd(cfgFn))
	rootCmd.AddCommand(showCmd(cfgFn))
	rootCmd.AddCommand(shareCmd(cfgFn))
	rootCmd.AddCommand(leaveCmd(cfgFn))

	return rootCmd
}
