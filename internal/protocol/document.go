package protocol

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aki/amber/internal/browser"
)

// SessionDocument is the blob carried in the data field of create, open and
// update messages. The companion stores it verbatim.
type SessionDocument struct {
	UUID     string        `yaml:"uuid"`
	AutoSave bool          `yaml:"autoSave"`
	Tabs     []TabSnapshot `yaml:"tabs"`
}

// TabSnapshot is the subset of a tab handed to the companion.
type TabSnapshot struct {
	Highlighted    bool              `yaml:"highlighted"`
	Active         bool              `yaml:"active"`
	Attention      bool              `yaml:"attention,omitempty"`
	Pinned         bool              `yaml:"pinned"`
	Hidden         bool              `yaml:"hidden,omitempty"`
	Incognito      bool              `yaml:"incognito"`
	Audible        bool              `yaml:"audible,omitempty"`
	MutedInfo      browser.MutedInfo `yaml:"mutedInfo"`
	IsArticle      bool              `yaml:"isArticle,omitempty"`
	IsInReaderMode bool              `yaml:"isInReaderMode,omitempty"`
	URL            string            `yaml:"url"`
	Title          string            `yaml:"title,omitempty"`
}

// Snapshot projects a tab onto the fields kept in a session document.
func Snapshot(tab browser.Tab) TabSnapshot {
	return TabSnapshot{
		Highlighted:    tab.Highlighted,
		Active:         tab.Active,
		Attention:      tab.Attention,
		Pinned:         tab.Pinned,
		Hidden:         tab.Hidden,
		Incognito:      tab.Incognito,
		Audible:        tab.Audible,
		MutedInfo:      tab.MutedInfo,
		IsArticle:      tab.IsArticle,
		IsInReaderMode: tab.IsInReaderMode,
		URL:            tab.URL,
		Title:          tab.Title,
	}
}

// Snapshots projects every tab.
func Snapshots(tabs []browser.Tab) []TabSnapshot {
	out := make([]TabSnapshot, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, Snapshot(tab))
	}
	return out
}

var supportedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
	"data":  true,
	"file":  true,
}

// SupportedURL reports whether a URL starts with a scheme the companion can
// reopen. Browser-internal pages (about:, moz-extension:, chrome:) are not.
func SupportedURL(url string) bool {
	end := 0
	for end < len(url) && isWordByte(url[end]) {
		end++
	}
	return end > 0 && supportedSchemes[url[:end]]
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// FilterTabs drops tabs with unsupported schemes and projects the rest.
func FilterTabs(tabs []browser.Tab) []TabSnapshot {
	out := make([]TabSnapshot, 0, len(tabs))
	for _, tab := range tabs {
		if SupportedURL(tab.URL) {
			out = append(out, Snapshot(tab))
		}
	}
	return out
}

// URLs returns the URL of every snapshot in order.
func (d *SessionDocument) URLs() []string {
	urls := make([]string, 0, len(d.Tabs))
	for _, tab := range d.Tabs {
		urls = append(urls, tab.URL)
	}
	return urls
}

// ActiveIndex returns the index of the first active tab, or 0.
func (d *SessionDocument) ActiveIndex() int {
	for i, tab := range d.Tabs {
		if tab.Active {
			return i
		}
	}
	return 0
}

// MarshalDocument encodes a session document as YAML.
func MarshalDocument(doc *SessionDocument) (string, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session document: %w", err)
	}
	return string(data), nil
}

// UnmarshalDocument decodes a YAML session document. A document without a
// uuid is rejected.
func UnmarshalDocument(data string) (*SessionDocument, error) {
	var doc SessionDocument
	if err := yaml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session document: %w", err)
	}
	if doc.UUID == "" {
		return nil, fmt.Errorf("session document has no uuid")
	}
	return &doc, nil
}
