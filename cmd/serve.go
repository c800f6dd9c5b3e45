package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saabsa/site-builder/internal/config"
)

func newServeCmd() *cobra.Command {
	var (
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Builds once, then serves the site locally",
		Long: `Runs a build and serves the output root over HTTP with caching disabled.
With --watch, edits under the posts directory trigger a debounced rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if a.Config().Storage.Provider != config.StorageLocal {
				return fmt.Errorf("serve needs storage.provider %q, got %q", config.StorageLocal, a.Config().Storage.Provider)
			}

			watcher, err := a.Watcher(cmd.Context())
			if err != nil {
				return err
			}
			if err := watcher.Rebuild(cmd.Context()); err != nil {
				return fmt.Errorf("initial build: %w", err)
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return a.PreviewServer(port).Run(ctx)
			})
			if watch {
				g.Go(func() error {
					return watcher.Run(ctx)
				})
			} else {
				a.Logger().Info("watch disabled; restart to pick up changes", zap.Bool("watch", watch))
			}
			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default preview.port)")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild when sources change")
	return cmd
}
