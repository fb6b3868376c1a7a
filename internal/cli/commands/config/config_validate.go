package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
	"github.com/aki/amber/internal/native"
)

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file against its JSON Schema and check that
the native companion can be located.

Without a command override the companion is looked up as <connector.name>.json
in the configured manifest directories, and the manifest must allow the
configured extension id.`,
		Example: `  # Validate the configuration
  amber config validate

  # Also print where the companion was found
  amber config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: validateConfig,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed validation information")

	return cmd
}

func validateConfig(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	m, err := configManager(cmd)
	if err != nil {
		return err
	}

	cfg, err := m.Load()
	if err != nil {
		ui.Error("Configuration validation failed: %v", err)
		return fmt.Errorf("invalid configuration")
	}

	if m.Exists() {
		ui.Success("Configuration is valid: %s", m.ConfigPath())
	} else {
		ui.Info("No configuration file, using defaults")
	}

	argv, err := native.ResolveCommand(native.ProcessConfig{
		Name:         cfg.Connector.Name,
		ExtensionID:  cfg.Extension.ID,
		ManifestDirs: cfg.Connector.ManifestDirs,
		Command:      cfg.Connector.Command,
	})
	switch {
	case errors.Is(err, native.ErrManifestNotFound):
		ui.Warning("Companion %s is not installed; searched:", cfg.Connector.Name)
		for _, dir := range cfg.Connector.ManifestDirs {
			ui.OutputLine("  %s", dir)
		}
		return nil
	case err != nil:
		ui.Error("Companion %s cannot be started: %v", cfg.Connector.Name, err)
		return fmt.Errorf("invalid companion setup")
	}

	ui.Success("Companion %s found", cfg.Connector.Name)
	if verbose {
		ui.OutputLine("  Command: %v", argv)
		ui.OutputLine("  Extension: %s", cfg.Extension.ID)
	}
	return nil
}
