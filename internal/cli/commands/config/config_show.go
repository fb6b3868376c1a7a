package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aki/amber/internal/cli/ui"
)

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after defaults and environment overrides
(AMBER_EXTENSION_ID, AMBER_CONNECTOR_NAME) are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := configManager(cmd)
			if err != nil {
				return err
			}

			cfg, err := m.Load()
			if err != nil {
				return err
			}

			if ui.GlobalFormatter.IsJSON() {
				return ui.GlobalFormatter.Output(cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			return ui.GlobalFormatter.Output(string(data))
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := configManager(cmd)
			if err != nil {
				return err
			}
			ui.OutputLine("%s", m.ConfigPath())
			return nil
		},
	}
}
