package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saabsa/site-builder/internal/indexing"
)

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <url> [URL_UPDATED|URL_DELETED]",
		Short: "Tells the indexing API that a page was updated or removed",
		Long: `Signs a service-account assertion with the key in GOOGLE_INDEXING_KEY,
exchanges it for an access token and publishes a single URL notification.
The type defaults to URL_UPDATED.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runNotifyCommand,
	}
}

func runNotifyCommand(cmd *cobra.Command, args []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	notificationType := indexing.URLUpdated
	if len(args) == 2 {
		notificationType = args[1]
	}
	if _, err := indexing.ValidateType(notificationType); err != nil {
		return err
	}

	notifier, err := a.Notifier(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("indexing credentials: %w", err)
	}

	if _, err := notifier.Notify(cmd.Context(), args[0], notificationType); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "❌ Notification failed")
		return err
	}
	return nil
}
