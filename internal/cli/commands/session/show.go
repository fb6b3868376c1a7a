package session

import (
	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show a session and its saved tabs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd)
			if err != nil {
				return err
			}

			r, err := resolveSession(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			if ui.GlobalFormatter.IsJSON() {
				return ui.GlobalFormatter.Output(r.Session)
			}
			ui.PrintSessionDetails(r)
			return nil
		},
	}
}
