// Package commands implements the amber command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/commands/config"
	"github.com/aki/amber/internal/cli/commands/session"
	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/core/logger"
)

var flagFormat string

// NewRootCmd builds the command tree. Global flags are parsed before any
// subcommand runs; the logger travels in the command context.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amber",
		Short: "Persist browser windows as named sessions",
		Long: `Amber keeps browser windows in sync with session files written by a
native companion application.

It watches the tabs of every window bound to a session, marks windows whose
tabs drifted from the saved session, and restores saved sessions into new
windows on request.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseFormat(flagFormat)
			if err != nil {
				return err
			}
			if err := ui.SetGlobalFormatter(format); err != nil {
				return err
			}

			log, err := CreateLogger()
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	cmd.PersistentFlags().String("data-dir", "", "Data directory (default $AMBER_DATA_DIR or ~/.amber)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "pretty", "Output format (pretty, json)")
	RegisterLoggerFlags(cmd)

	cmd.AddCommand(runCmd())
	cmd.AddCommand(session.Command())
	cmd.AddCommand(config.Command())
	cmd.AddCommand(mcpCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
