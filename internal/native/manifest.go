package native

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrManifestNotFound is returned when no directory holds a host manifest.
var ErrManifestNotFound = errors.New("native messaging host manifest not found")

// Manifest is a native-messaging host manifest.
type Manifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`

	// File is where the manifest was read from.
	File string `json:"-"`
}

// DefaultManifestDirs returns the per-user and system directories browsers
// search for host manifests on this platform.
func DefaultManifestDirs() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Mozilla", "NativeMessagingHosts"),
			filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "NativeMessagingHosts"),
			"/Library/Application Support/Mozilla/NativeMessagingHosts",
		}
	case "windows":
		appData := os.Getenv("APPDATA")
		return []string{filepath.Join(appData, "Mozilla", "NativeMessagingHosts")}
	default:
		return []string{
			filepath.Join(home, ".mozilla", "native-messaging-hosts"),
			filepath.Join(home, ".config", "google-chrome", "NativeMessagingHosts"),
			filepath.Join(home, ".config", "chromium", "NativeMessagingHosts"),
			"/usr/lib/mozilla/native-messaging-hosts",
			"/usr/lib64/mozilla/native-messaging-hosts",
			"/etc/opt/chrome/native-messaging-hosts",
		}
	}
}

// FindManifest loads <name>.json from the first directory that has it.
func FindManifest(name string, dirs []string) (*Manifest, error) {
	for _, dir := range dirs {
		file := filepath.Join(dir, name+".json")
		data, err := os.ReadFile(file)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}

		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, err)
		}
		m.File = file

		if err := m.validate(name); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", file, err)
		}
		return &m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, name)
}

func (m *Manifest) validate(name string) error {
	if m.Name != name {
		return fmt.Errorf("name %q does not match %q", m.Name, name)
	}
	if m.Type != "stdio" {
		return fmt.Errorf("unsupported type %q", m.Type)
	}
	if m.Path == "" {
		return fmt.Errorf("missing path")
	}
	return nil
}

// Allows reports whether the manifest admits an extension id. A manifest
// without an allow list admits everyone.
func (m *Manifest) Allows(extensionID string) bool {
	if len(m.AllowedExtensions) == 0 {
		return true
	}
	for _, id := range m.AllowedExtensions {
		if id == extensionID {
			return true
		}
	}
	return false
}

// Executable returns the host binary path; relative paths are resolved
// against the manifest's directory.
func (m *Manifest) Executable() string {
	if filepath.IsAbs(m.Path) || m.File == "" {
		return m.Path
	}
	return filepath.Join(filepath.Dir(m.File), m.Path)
}
