// Package config implements the config subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/core/config"
)

// Command returns the config command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage amber configuration",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configPathCmd())
	cmd.AddCommand(configValidateCmd())

	return cmd
}

// configManager returns the manager for the data directory named by the
// global flags. It never touches the session store.
func configManager(cmd *cobra.Command) (*config.Manager, error) {
	explicit, _ := cmd.Flags().GetString("data-dir")
	dataDir, err := config.ResolveDataDir(explicit)
	if err != nil {
		return nil, err
	}
	return config.NewManager(dataDir), nil
}
