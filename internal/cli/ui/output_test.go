package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/store"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "< 1m"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "never", FormatTime(time.Time{}))
	assert.Equal(t, "just now", FormatTime(time.Now()))
	assert.Equal(t, "1 minute ago", FormatTime(time.Now().Add(-90*time.Second)))
	assert.Equal(t, "3 hours ago", FormatTime(time.Now().Add(-3*time.Hour-time.Minute)))
	assert.Equal(t, "2 days ago", FormatTime(time.Now().Add(-49*time.Hour)))

	old := time.Date(2020, 1, 2, 3, 4, 0, 0, time.Local)
	assert.Equal(t, "2020-01-02 03:04", FormatTime(old))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "https:...", Truncate("https://example.com", 9))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestSessionRow_DisplayID(t *testing.T) {
	s := &store.Session{ID: "9b2f"}
	assert.Equal(t, "9b2f", SessionRow{Session: s}.DisplayID())
	assert.Equal(t, "3", SessionRow{Index: "3", Session: s}.DisplayID())
}

func TestPrintSessionList(t *testing.T) {
	out, _ := captureOutput(t)

	PrintSessionList([]SessionRow{
		{Index: "1", Session: &store.Session{ID: "s1", Name: "work", URI: "file:///work.yaml", WindowID: 4, Tabs: []string{"https://a"}, AutoSave: true}},
		{Index: "2", Session: &store.Session{ID: "s2", WindowID: browser.WindowIDNone}},
	})

	text := out.String()
	assert.Contains(t, text, "Sessions (2)")
	assert.Contains(t, text, "work")
	assert.Contains(t, text, "closed")
	assert.Contains(t, text, "pending")
}

func TestPrintSessionList_Empty(t *testing.T) {
	out, _ := captureOutput(t)

	PrintSessionList(nil)
	assert.Contains(t, out.String(), "No sessions found")
}

func TestPrintSessionDetails(t *testing.T) {
	out, _ := captureOutput(t)

	PrintSessionDetails(SessionRow{Index: "1", Session: &store.Session{
		ID:       "s1",
		Name:     "work",
		URI:      "file:///work.yaml",
		WindowID: 4,
		Tabs:     []string{"https://a", "https://b"},
	}})

	text := out.String()
	assert.Contains(t, text, "work")
	assert.Contains(t, text, "file:///work.yaml")
	assert.Contains(t, text, "Tabs (2):")
	assert.Contains(t, text, " 2. https://b")
}
