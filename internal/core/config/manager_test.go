package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestManager_LoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv(ExtensionIDEnv, "")
	t.Setenv(ConnectorNameEnv, "")

	m := NewManager(t.TempDir())
	assert.False(t, m.Exists())

	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultExtensionID, cfg.Extension.ID)
	assert.Equal(t, DefaultConnectorName, cfg.Connector.Name)
	assert.Equal(t, DefaultPlaceholderURL, cfg.Browser.PlaceholderURL)
	assert.Equal(t, DefaultBadgeText, cfg.Browser.BadgeText)
}

func TestManager_SaveAndLoad(t *testing.T) {
	t.Setenv(ExtensionIDEnv, "")
	t.Setenv(ConnectorNameEnv, "")

	dir := t.TempDir()
	m := NewManager(dir)

	cfg := DefaultConfig()
	cfg.Extension.AutoSaveDefault = true
	cfg.Connector.Command = Command{"/usr/local/bin/amber-host", "--verbose"}
	require.NoError(t, m.Save(cfg))
	assert.True(t, m.Exists())
	assert.Equal(t, filepath.Join(dir, ConfigFile), m.ConfigPath())

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestManager_LoadFillsDefaults(t *testing.T) {
	t.Setenv(ExtensionIDEnv, "")
	t.Setenv(ConnectorNameEnv, "")

	dir := t.TempDir()
	content := `
extension:
  autoSaveDefault: true
connector:
  command: /opt/amber/host
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644))

	cfg, err := NewManager(dir).Load()
	require.NoError(t, err)
	assert.True(t, cfg.Extension.AutoSaveDefault)
	assert.Equal(t, DefaultExtensionID, cfg.Extension.ID)
	assert.Equal(t, Command{"/opt/amber/host"}, cfg.Connector.Command)
	assert.Equal(t, DefaultTitleSeparator, cfg.Browser.TitleSeparator)
	assert.Equal(t, DefaultVersion, cfg.Version)
}

func TestManager_LoadEnvOverrides(t *testing.T) {
	t.Setenv(ExtensionIDEnv, "dev@example.com")
	t.Setenv(ConnectorNameEnv, "com.example.dev")

	cfg, err := NewManager(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", cfg.Extension.ID)
	assert.Equal(t, "com.example.dev", cfg.Connector.Name)
}

func TestManager_LoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "browser:\n  colour: red\n"},
		{name: "bad connector name", content: "connector:\n  name: Com.Example\n"},
		{name: "long badge", content: "browser:\n  badgeText: toolong\n"},
		{name: "wrong type", content: "extension:\n  autoSaveDefault: sometimes\n"},
		{name: "malformed", content: "extension: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(tt.content), 0o644))

			_, err := NewManager(dir).Load()
			assert.Error(t, err)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	explicit := t.TempDir()
	dir, err := ResolveDataDir(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, dir)

	fromEnv := t.TempDir()
	t.Setenv(DataDirEnv, fromEnv)
	dir, err = ResolveDataDir("")
	require.NoError(t, err)
	assert.Equal(t, fromEnv, dir)

	t.Setenv(DataDirEnv, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir, err = ResolveDataDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDataDir), dir)
}

func TestCommand_UnmarshalYAML(t *testing.T) {
	var v struct {
		Command Command `yaml:"command"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("command: host\n"), &v))
	assert.Equal(t, Command{"host"}, v.Command)

	require.NoError(t, yaml.Unmarshal([]byte("command: [host, -v]\n"), &v))
	assert.Equal(t, Command{"host", "-v"}, v.Command)

	assert.Error(t, yaml.Unmarshal([]byte("command: {a: b}\n"), &v))
}
