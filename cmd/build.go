package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Generates post pages, the listing index and the sitemap",
		Long: `Loads every post source, attaches header images when a Pexels key is
configured, renders one page per post and writes the listing index and the
sitemap to the configured storage provider.`,
		Args: cobra.NoArgs,
		RunE: runBuildCommand,
	}
}

func runBuildCommand(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	p, err := a.Pipeline(cmd.Context())
	if err != nil {
		return err
	}

	result, err := p.Build(cmd.Context())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌ Build failed")
		return fmt.Errorf("build: %w", err)
	}

	a.Logger().Info("Build command finished.",
		zap.String("build_id", result.BuildID),
		zap.Duration("elapsed", result.Finished.Sub(result.Started)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Built %d posts, wrote %d files\n", len(result.Posts), len(result.Objects))
	return nil
}
