package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aki/amber/internal/native"
)

// Config is the amber configuration file.
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Extension ExtensionConfig `yaml:"extension" json:"extension"`
	Connector ConnectorConfig `yaml:"connector" json:"connector"`
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
}

// ExtensionConfig describes the extension identity and its options page.
type ExtensionConfig struct {
	// ID is the only sender allowed to submit session-creation requests.
	ID string `yaml:"id" json:"id"`
	// AutoSaveDefault pre-fills the auto-save checkbox of the save dialog.
	AutoSaveDefault bool `yaml:"autoSaveDefault" json:"autoSaveDefault"`
}

// ConnectorConfig locates the native companion.
type ConnectorConfig struct {
	Name         string   `yaml:"name" json:"name"`
	ManifestDirs []string `yaml:"manifestDirs,omitempty" json:"manifestDirs,omitempty"`
	// Command bypasses manifest lookup when set.
	Command Command `yaml:"command,omitempty" json:"command,omitempty"`
}

// BrowserConfig tunes window decoration.
type BrowserConfig struct {
	// PlaceholderURL marks a blank window that a restore may reuse.
	PlaceholderURL string `yaml:"placeholderURL" json:"placeholderURL"`
	TitleSeparator string `yaml:"titleSeparator" json:"titleSeparator"`
	BadgeText      string `yaml:"badgeText" json:"badgeText"`
}

// Command is an argv that may be written as a single string or a list.
type Command []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*c = nil
			return nil
		}
		*c = Command{node.Value}
		return nil
	case yaml.SequenceNode:
		var args []string
		if err := node.Decode(&args); err != nil {
			return err
		}
		*c = args
		return nil
	default:
		return fmt.Errorf("command must be a string or a list of strings")
	}
}

// Default values.
const (
	DefaultVersion        = "1.0"
	DefaultExtensionID    = "amber@paysonwallach.com"
	DefaultConnectorName  = "com.paysonwallach.amber"
	DefaultPlaceholderURL = "about:blank"
	DefaultTitleSeparator = " – "
	DefaultBadgeText      = "!"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: DefaultVersion,
		Extension: ExtensionConfig{
			ID: DefaultExtensionID,
		},
		Connector: ConnectorConfig{
			Name:         DefaultConnectorName,
			ManifestDirs: native.DefaultManifestDirs(),
		},
		Browser: BrowserConfig{
			PlaceholderURL: DefaultPlaceholderURL,
			TitleSeparator: DefaultTitleSeparator,
			BadgeText:      DefaultBadgeText,
		},
	}
}
