// Package config loads and saves the amber configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DataDirEnv overrides the data directory.
	DataDirEnv = "AMBER_DATA_DIR"
	// DefaultDataDir is the data directory name under the home directory.
	DefaultDataDir = ".amber"
	// ConfigFile is the configuration filename inside the data directory.
	ConfigFile = "config.yaml"
)

// Environment overrides applied after the file is read.
const (
	ExtensionIDEnv   = "AMBER_EXTENSION_ID"
	ConnectorNameEnv = "AMBER_CONNECTOR_NAME"
)

// ResolveDataDir picks the data directory: an explicit value, then
// $AMBER_DATA_DIR, then ~/.amber.
func ResolveDataDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, DefaultDataDir), nil
}

// Manager reads and writes the configuration file of one data directory.
type Manager struct {
	dataDir    string
	configPath string
}

// NewManager creates a manager for dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		configPath: filepath.Join(dataDir, ConfigFile),
	}
}

// Load reads the configuration. A missing file yields the defaults; a
// present file is validated against the schema before defaults fill the
// gaps.
func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		applyEnv(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", m.configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", m.configPath, err)
	}
	return &cfg, nil
}

// Save writes the configuration.
func (m *Manager) Save(cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Exists reports whether the configuration file has been written.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// DataDir returns the data directory.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// ConfigPath returns the configuration file path.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// applyDefaults fills unset fields.
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Extension.ID == "" {
		cfg.Extension.ID = defaults.Extension.ID
	}
	if cfg.Connector.Name == "" {
		cfg.Connector.Name = defaults.Connector.Name
	}
	if len(cfg.Connector.ManifestDirs) == 0 {
		cfg.Connector.ManifestDirs = defaults.Connector.ManifestDirs
	}
	if cfg.Browser.PlaceholderURL == "" {
		cfg.Browser.PlaceholderURL = defaults.Browser.PlaceholderURL
	}
	if cfg.Browser.TitleSeparator == "" {
		cfg.Browser.TitleSeparator = defaults.Browser.TitleSeparator
	}
	if cfg.Browser.BadgeText == "" {
		cfg.Browser.BadgeText = defaults.Browser.BadgeText
	}
}

func applyEnv(cfg *Config) {
	if id := os.Getenv(ExtensionIDEnv); id != "" {
		cfg.Extension.ID = id
	}
	if name := os.Getenv(ConnectorNameEnv); name != "" {
		cfg.Connector.Name = name
	}
}
