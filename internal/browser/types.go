// Package browser describes the host browser surface the engine drives:
// windows, tabs, the per-window badge and title preface, the tab context
// menu and the runtime broadcast channel to UI surfaces.
package browser

import "strings"

const (
	// WindowIDNone is reported by focus changes when no browser window has focus.
	WindowIDNone = -1
	// TabIDNone marks "no tab" where a tab id is optional.
	TabIDNone = -1
)

// WindowType is the kind of a browser window.
type WindowType string

const (
	WindowTypeNormal WindowType = "normal"
	WindowTypePopup  WindowType = "popup"
	WindowTypePanel  WindowType = "panel"
)

// MutedInfo describes why a tab is muted.
type MutedInfo struct {
	Muted bool `yaml:"muted" json:"muted"`
}

// Tab is a browser tab as reported by the host.
type Tab struct {
	ID             int       `yaml:"id" json:"id"`
	WindowID       int       `yaml:"windowId" json:"windowId"`
	Index          int       `yaml:"index" json:"index"`
	URL            string    `yaml:"url" json:"url"`
	Title          string    `yaml:"title,omitempty" json:"title,omitempty"`
	Active         bool      `yaml:"active,omitempty" json:"active,omitempty"`
	Highlighted    bool      `yaml:"highlighted,omitempty" json:"highlighted,omitempty"`
	Attention      bool      `yaml:"attention,omitempty" json:"attention,omitempty"`
	Pinned         bool      `yaml:"pinned,omitempty" json:"pinned,omitempty"`
	Hidden         bool      `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Incognito      bool      `yaml:"incognito,omitempty" json:"incognito,omitempty"`
	Audible        bool      `yaml:"audible,omitempty" json:"audible,omitempty"`
	MutedInfo      MutedInfo `yaml:"mutedInfo,omitempty" json:"mutedInfo,omitempty"`
	IsArticle      bool      `yaml:"isArticle,omitempty" json:"isArticle,omitempty"`
	IsInReaderMode bool      `yaml:"isInReaderMode,omitempty" json:"isInReaderMode,omitempty"`
	Discarded      bool      `yaml:"discarded,omitempty" json:"discarded,omitempty"`
	Status         string    `yaml:"status,omitempty" json:"status,omitempty"`
	FavIconURL     string    `yaml:"favIconUrl,omitempty" json:"favIconUrl,omitempty"`
}

// Window is a browser window; Tabs is only populated when requested.
type Window struct {
	ID           int        `yaml:"id" json:"id"`
	Type         WindowType `yaml:"type" json:"type"`
	Focused      bool       `yaml:"focused,omitempty" json:"focused,omitempty"`
	TitlePreface string     `yaml:"titlePreface,omitempty" json:"titlePreface,omitempty"`
	Tabs         []Tab      `yaml:"tabs,omitempty" json:"tabs,omitempty"`
}

// URLs returns the URLs of tabs in order, skipping the tab with id except.
// Pass TabIDNone to keep every tab.
func URLs(tabs []Tab, except int) []string {
	urls := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if except != TabIDNone && tab.ID == except {
			continue
		}
		urls = append(urls, tab.URL)
	}
	return urls
}

// Without returns tabs minus the tab with the given id.
func Without(tabs []Tab, tabID int) []Tab {
	if tabID == TabIDNone {
		return tabs
	}
	kept := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if tab.ID != tabID {
			kept = append(kept, tab)
		}
	}
	return kept
}

// TitlePreface builds the window title prefix for a session name.
func TitlePreface(name, separator string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return name + separator
}
