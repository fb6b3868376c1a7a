// Package session implements the session subcommands.
package session

import "github.com/spf13/cobra"

// Command returns the session command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Inspect stored sessions",
		Long: `Inspect and manage the sessions stored in the data directory.

Sessions can be addressed by id or by the short index shown in 'amber session list'.`,
	}

	cmd.AddCommand(listCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(removeCmd())
	cmd.AddCommand(autoSaveCmd())

	return cmd
}
