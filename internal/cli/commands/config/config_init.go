package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/core/config"
)

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write a configuration file with the default settings to the data directory.

An existing file is left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := configManager(cmd)
			if err != nil {
				return err
			}

			if m.Exists() && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", m.ConfigPath())
			}

			if err := m.Save(config.DefaultConfig()); err != nil {
				return err
			}
			ui.Success("Configuration written to %s", m.ConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")

	return cmd
}
