package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/browser"
)

func record(h *Host) *[]browser.Event {
	var events []browser.Event
	h.Subscribe(func(ev browser.Event) { events = append(events, ev) })
	return &events
}

func TestNew_AssignsIDs(t *testing.T) {
	h := New(
		browser.Window{Tabs: []browser.Tab{{URL: "https://a"}, {URL: "https://b"}}},
		browser.Window{ID: 7, Tabs: []browser.Tab{{ID: 40, URL: "https://c"}}},
	)

	w1 := h.Window(1)
	require.NotNil(t, w1)
	assert.True(t, w1.Focused)
	assert.Equal(t, browser.WindowTypeNormal, w1.Type)
	assert.Equal(t, []int{1, 2}, []int{w1.Tabs[0].ID, w1.Tabs[1].ID})
	assert.Equal(t, 1, w1.Tabs[1].Index)

	w7 := h.Window(7)
	require.NotNil(t, w7)
	assert.False(t, w7.Focused)
	assert.Equal(t, 7, w7.Tabs[0].WindowID)

	w, err := h.CreateWindow(context.Background(), browser.CreateWindowOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8, w.ID)
	assert.Equal(t, 41, w.Tabs[0].ID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windows.yaml")
	content := `
windows:
  - tabs:
      - url: https://example.com
        active: true
      - url: https://example.org
  - type: popup
    tabs:
      - url: about:blank
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	h, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, h.WindowCount())

	normal, err := h.ListWindows(context.Background(), browser.WindowQuery{Types: []browser.WindowType{browser.WindowTypeNormal}, Populate: true})
	require.NoError(t, err)
	require.Len(t, normal, 1)
	assert.Equal(t, []string{"https://example.com", "https://example.org"}, browser.URLs(normal[0].Tabs, browser.TabIDNone))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCreateWindow_EmitsEvents(t *testing.T) {
	h := New(browser.Window{Tabs: []browser.Tab{{URL: "https://a"}}})
	events := record(h)

	w, err := h.CreateWindow(context.Background(), browser.CreateWindowOptions{URL: "about:blank"})
	require.NoError(t, err)

	require.Len(t, *events, 2)
	created, ok := (*events)[0].(browser.TabCreated)
	require.True(t, ok)
	assert.Equal(t, w.ID, created.Tab.WindowID)
	assert.Equal(t, browser.WindowFocusChanged{WindowID: w.ID}, (*events)[1])

	assert.False(t, h.Window(1).Focused)
	assert.True(t, h.Window(w.ID).Focused)
}

func TestCreateTab_InsertsAtIndex(t *testing.T) {
	ctx := context.Background()
	h := New(browser.Window{Tabs: []browser.Tab{{URL: "https://a", Active: true}, {URL: "https://b"}}})

	_, err := h.CreateTab(ctx, browser.CreateTabOptions{WindowID: 1, URL: "https://first", Index: 0, Discarded: true})
	require.NoError(t, err)
	tab, err := h.CreateTab(ctx, browser.CreateTabOptions{URL: "https://last", Index: -1, Active: true})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Index)

	w := h.Window(1)
	assert.Equal(t, []string{"https://first", "https://a", "https://b", "https://last"}, browser.URLs(w.Tabs, browser.TabIDNone))
	assert.True(t, w.Tabs[0].Discarded)
	assert.False(t, w.Tabs[1].Active)
	assert.True(t, w.Tabs[3].Active)

	_, err = h.CreateTab(ctx, browser.CreateTabOptions{WindowID: 99, URL: "https://x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTab_EmitsURLChange(t *testing.T) {
	ctx := context.Background()
	h := New(browser.Window{Tabs: []browser.Tab{{URL: "about:blank"}}})
	events := record(h)

	_, err := h.UpdateTab(ctx, 1, browser.UpdateTabOptions{URL: "about:blank"})
	require.NoError(t, err)
	assert.Empty(t, *events)

	updated, err := h.UpdateTab(ctx, 1, browser.UpdateTabOptions{URL: "https://a"})
	require.NoError(t, err)
	assert.Equal(t, "https://a", updated.URL)
	require.Len(t, *events, 1)
	change := (*events)[0].(browser.TabUpdated)
	assert.Equal(t, "https://a", *change.Change.URL)
}

func TestMoveTabs(t *testing.T) {
	ctx := context.Background()
	h := New(
		browser.Window{Tabs: []browser.Tab{{URL: "https://a"}, {URL: "https://b"}, {URL: "https://c"}}},
		browser.Window{Tabs: []browser.Tab{{URL: "https://d"}}},
	)

	require.NoError(t, h.MoveTabs(ctx, []int{1, 2}, browser.MoveOptions{WindowID: 2, Index: -1}))
	assert.Equal(t, []string{"https://c"}, browser.URLs(h.Window(1).Tabs, browser.TabIDNone))
	assert.Equal(t, []string{"https://d", "https://a", "https://b"}, browser.URLs(h.Window(2).Tabs, browser.TabIDNone))

	require.NoError(t, h.MoveTabs(ctx, []int{2}, browser.MoveOptions{Index: 0}))
	assert.Equal(t, []string{"https://b", "https://d", "https://a"}, browser.URLs(h.Window(2).Tabs, browser.TabIDNone))

	assert.ErrorIs(t, h.MoveTabs(ctx, []int{99}, browser.MoveOptions{Index: -1}), ErrNotFound)
}

func TestQueryTabs(t *testing.T) {
	ctx := context.Background()
	h := New(
		browser.Window{Tabs: []browser.Tab{{URL: "https://a", Highlighted: true}, {URL: "https://b"}}},
		browser.Window{Tabs: []browser.Tab{{URL: "https://c", Highlighted: true}}},
	)

	tabs, err := h.QueryTabs(ctx, browser.TabQuery{Highlighted: true, CurrentWindow: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a"}, browser.URLs(tabs, browser.TabIDNone))

	tabs, err = h.QueryTabs(ctx, browser.TabQuery{WindowID: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://c"}, browser.URLs(tabs, browser.TabIDNone))
}

func TestRemoveWindow_EmitsClosingEvents(t *testing.T) {
	h := New(browser.Window{Tabs: []browser.Tab{{URL: "https://a"}, {URL: "https://b"}}})
	require.NoError(t, h.SetBadgeText(context.Background(), 1, "!"))
	events := record(h)

	require.NoError(t, h.RemoveWindow(1))
	assert.Equal(t, []browser.Event{
		browser.TabRemoved{TabID: 1, WindowID: 1, IsWindowClosing: true},
		browser.TabRemoved{TabID: 2, WindowID: 1, IsWindowClosing: true},
		browser.WindowRemoved{WindowID: 1},
		browser.WindowFocusChanged{WindowID: browser.WindowIDNone},
	}, *events)
	assert.Equal(t, 0, h.WindowCount())
	assert.Empty(t, h.Badge(1))

	assert.ErrorIs(t, h.RemoveWindow(1), ErrNotFound)
}

func TestRemoveTab(t *testing.T) {
	h := New(browser.Window{Tabs: []browser.Tab{{URL: "https://a"}, {URL: "https://b"}}})
	events := record(h)

	require.NoError(t, h.RemoveTab(1))
	assert.Equal(t, []browser.Event{browser.TabRemoved{TabID: 1, WindowID: 1}}, *events)
	assert.Equal(t, 0, h.Window(1).Tabs[0].Index)
}

func TestMenuItems(t *testing.T) {
	ctx := context.Background()
	h := New()

	require.NoError(t, h.CreateMenuItem(ctx, browser.MenuItem{ID: "parent", Title: "Move to"}))
	require.NoError(t, h.CreateMenuItem(ctx, browser.MenuItem{ID: "child", ParentID: "parent", Title: "work"}))
	require.NoError(t, h.CreateMenuItem(ctx, browser.MenuItem{ID: "other", Title: "other"}))

	assert.Error(t, h.CreateMenuItem(ctx, browser.MenuItem{ID: "child"}))
	assert.ErrorIs(t, h.CreateMenuItem(ctx, browser.MenuItem{ID: "orphan", ParentID: "nope"}), ErrNotFound)

	require.NoError(t, h.UpdateMenuItem(ctx, "child", "play"))
	assert.Equal(t, "play", h.MenuItems()[1].Title)

	events := record(h)
	require.NoError(t, h.ClickMenu("child", 3))
	assert.Equal(t, []browser.Event{browser.MenuClicked{MenuItemID: "child", TabID: 3}}, *events)

	require.NoError(t, h.RemoveMenuItem(ctx, "parent"))
	items := h.MenuItems()
	require.Len(t, items, 1)
	assert.Equal(t, "other", items[0].ID)

	assert.ErrorIs(t, h.RemoveMenuItem(ctx, "parent"), ErrNotFound)
	assert.ErrorIs(t, h.ClickMenu("parent", 3), ErrNotFound)
}

func TestFail(t *testing.T) {
	ctx := context.Background()
	h := New()
	boom := errors.New("boom")

	h.Fail("CreateWindow", boom)
	_, err := h.CreateWindow(ctx, browser.CreateWindowOptions{})
	assert.ErrorIs(t, err, boom)

	h.Fail("CreateWindow", nil)
	_, err = h.CreateWindow(ctx, browser.CreateWindowOptions{})
	assert.NoError(t, err)
}

func TestBadgeAndBroadcast(t *testing.T) {
	ctx := context.Background()
	h := New(browser.Window{})

	require.NoError(t, h.SetBadgeText(ctx, 1, "!"))
	assert.Equal(t, "!", h.Badge(1))
	require.NoError(t, h.SetBadgeText(ctx, 1, ""))
	assert.Empty(t, h.Badge(1))

	require.NoError(t, h.Broadcast(ctx, "close"))
	assert.Equal(t, []string{"close"}, h.Broadcasts())

	require.NoError(t, h.SetTitlePreface(ctx, 1, "work - "))
	assert.Equal(t, "work - ", h.Window(1).TitlePreface)
}
