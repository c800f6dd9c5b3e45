// Package cmd defines and implements the blogctl CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saabsa/site-builder/internal/app"
	"github.com/saabsa/site-builder/internal/clock/system"
	"github.com/saabsa/site-builder/internal/config"
	"github.com/saabsa/site-builder/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp loads configuration and builds the container. It is a variable so
// tests can swap the clock or logger.
var newApp = func(cfgPath string) (*app.App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger, system.New()), nil
}

// newRootCmd creates the root command. The returned cleanup closes whatever
// app the selected subcommand created.
func newRootCmd() (*cobra.Command, func()) {
	var (
		cfgFile  string
		instance *app.App
	)

	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Builds and publishes the company blog.",
		Long: `blogctl turns the Markdown and JSON sources under the posts directory into
static pages, a listing index and a sitemap, and can notify the search
engine's indexing API when a page changes.`,

		// Runs after argument validation and before every subcommand: load
		// config and inject the App. Usage is only printed for bad arguments.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			a, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			instance = a
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newNotifyCmd())
	cmd.AddCommand(newServeCmd())

	cleanup := func() {
		if instance == nil {
			return
		}
		instance.Close()
		_ = instance.Logger().Sync()
	}
	return cmd, cleanup
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// Execute runs the CLI with a context canceled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, cleanup := newRootCmd()
	defer cleanup()
	return root.ExecuteContext(ctx)
}
