// Package cli implements the deepread command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/deepread/internal/config"
	"github.com/mrlokans/deepread/internal/entrypoint"
	"github.com/mrlokans/deepread/internal/logging"
)

// version is set by Execute from build flags.
var version = "dev"

// cfg is loaded once per invocation before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "deepread",
	Short:         "Read documents, highlight passages and keep notes",
	Long:          `deepread serves a reader API with highlights, notes, reading progress and backups. Without a subcommand it starts the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.NewConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return logging.Setup(cfg.Log.Level, cfg.Log.Format)
	},
	RunE: runServe,
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// withApp opens storage for the duration of fn.
func withApp(fn func(ctx context.Context, app *entrypoint.App) error) error {
	ctx := context.Background()
	app, err := entrypoint.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}
