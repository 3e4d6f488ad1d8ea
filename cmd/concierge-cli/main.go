// README: Operator CLI; runs intent extraction, catalog search and chat turns without the HTTP layer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"concierge/internal/app"
	"concierge/internal/config"
	"concierge/internal/infra"
)

var (
	configFile string
	inMemory   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "concierge-cli",
	Short:         "Talk to the gift concierge from a terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONCIERGE_CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use an in-memory SQLite session store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to stderr")

	rootCmd.AddCommand(intentCmd, searchCmd, chatCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildApp loads config with the CLI overrides applied and wires the services.
func buildApp(ctx context.Context) (*app.App, func(), error) {
	if configFile != "" {
		if err := os.Setenv("CONCIERGE_CONFIG_FILE", configFile); err != nil {
			return nil, func() {}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, fmt.Errorf("config: %w", err)
	}
	if inMemory {
		cfg.DB.URL = "sqlite://:memory:"
		cfg.DB.AutoMigrate = true
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := infra.NewLogger(true, level)
	if err != nil {
		return nil, func() {}, err
	}

	a, cleanup, err := app.Build(ctx, cfg, logger)
	return a, func() {
		cleanup()
		_ = logger.Sync()
	}, err
}

