package session

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <session>...",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove stored sessions",
		Long: `Remove sessions from the local store.

The session files written by the companion are not touched. A window bound to
a removed session shows the unsaved badge on its next tab change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newContainer(cmd)
			if err != nil {
				return err
			}

			for _, ref := range args {
				r, err := resolveSession(ctx, c, ref)
				if err != nil {
					return err
				}
				if err := c.Store.Delete(ctx, r.Session.ID); err != nil {
					return fmt.Errorf("failed to remove session %s: %w", ref, err)
				}
				ui.Success("Session %s removed", r.DisplayID())
			}
			return nil
		},
	}
}
