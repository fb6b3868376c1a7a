package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/browser"
)

func TestSnapshot_KeepsOnlyDocumentFields(t *testing.T) {
	tab := browser.Tab{
		ID:          7,
		WindowID:    3,
		Index:       2,
		URL:         "https://example.com",
		Title:       "Example",
		Active:      true,
		Pinned:      true,
		MutedInfo:   browser.MutedInfo{Muted: true},
		Discarded:   true,
		Status:      "complete",
		FavIconURL:  "https://example.com/favicon.ico",
		Highlighted: true,
	}

	assert.Equal(t, TabSnapshot{
		Highlighted: true,
		Active:      true,
		Pinned:      true,
		MutedInfo:   browser.MutedInfo{Muted: true},
		URL:         "https://example.com",
		Title:       "Example",
	}, Snapshot(tab))
}

func TestSupportedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://a", true},
		{"https://a", true},
		{"ws://a", true},
		{"wss://a", true},
		{"ftp://a", true},
		{"data:text/plain,hi", true},
		{"file:///tmp/a", true},
		{"about:blank", false},
		{"moz-extension://id/popup.html", false},
		{"chrome://settings", false},
		{"httpx://a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportedURL(tt.url))
		})
	}
}

func TestFilterTabs(t *testing.T) {
	tabs := []browser.Tab{
		{ID: 1, URL: "https://a"},
		{ID: 2, URL: "about:preferences"},
		{ID: 3, URL: "file:///b"},
	}

	filtered := FilterTabs(tabs)
	require.Len(t, filtered, 2)
	assert.Equal(t, "https://a", filtered[0].URL)
	assert.Equal(t, "file:///b", filtered[1].URL)
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := &SessionDocument{
		UUID:     "4f1c2d0e-0000-4000-8000-000000000001",
		AutoSave: true,
		Tabs: []TabSnapshot{
			{URL: "https://a", Title: "A", Active: true},
			{URL: "https://b", Pinned: true, MutedInfo: browser.MutedInfo{Muted: true}},
		},
	}

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, data, "uuid: 4f1c2d0e-0000-4000-8000-000000000001")
	assert.Contains(t, data, "autoSave: true")

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
	assert.Equal(t, []string{"https://a", "https://b"}, decoded.URLs())
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	_, err := UnmarshalDocument("tabs: [unterminated")
	assert.Error(t, err)

	_, err = UnmarshalDocument("autoSave: true\ntabs: []\n")
	assert.Error(t, err)
}

func TestDocument_ActiveIndex(t *testing.T) {
	doc := &SessionDocument{Tabs: []TabSnapshot{{URL: "a"}, {URL: "b", Active: true}, {URL: "c", Active: true}}}
	assert.Equal(t, 1, doc.ActiveIndex())

	doc = &SessionDocument{Tabs: []TabSnapshot{{URL: "a"}, {URL: "b"}}}
	assert.Equal(t, 0, doc.ActiveIndex())
}
