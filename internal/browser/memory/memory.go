// Package memory implements browser.Host in memory.
//
// The host keeps windows, tabs, badges, title prefaces and context-menu items
// in maps and raises the same events a real browser would (tab created,
// removed, updated; window focus changed and removed) to a single subscriber.
// It backs the headless `amber run` mode and the engine tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aki/amber/internal/browser"
)

// ErrNotFound is returned for unknown window, tab or menu ids.
var ErrNotFound = errors.New("not found")

// Host is an in-memory browser.
type Host struct {
	mu         sync.Mutex
	windows    map[int]*browser.Window
	focused    int
	nextWindow int
	nextTab    int
	badges     map[int]string
	menus      map[string]browser.MenuItem
	menuOrder  []string
	broadcasts []string
	failures   map[string]error
	subscriber func(browser.Event)
}

var _ browser.Host = (*Host)(nil)

// New creates a host holding the given windows. Window and tab ids of zero
// are assigned; the first window gets focus.
func New(windows ...browser.Window) *Host {
	h := &Host{
		windows:    make(map[int]*browser.Window),
		focused:    browser.WindowIDNone,
		nextWindow: 1,
		nextTab:    1,
		badges:     make(map[int]string),
		menus:      make(map[string]browser.MenuItem),
		failures:   make(map[string]error),
	}

	for _, w := range windows {
		h.addWindowLocked(w)
	}
	return h
}

// seedFile is the on-disk shape of a windows file.
type seedFile struct {
	Windows []browser.Window `yaml:"windows"`
}

// LoadFile creates a host from a YAML windows file.
func LoadFile(path string) (*Host, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read windows file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse windows file: %w", err)
	}
	return New(seed.Windows...), nil
}

// Subscribe sets the function receiving host events. Events are delivered
// synchronously after the host's own state change is complete.
func (h *Host) Subscribe(fn func(browser.Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriber = fn
}

// Fail makes every later call of the named operation (for example
// "CreateWindow") return err. A nil err clears the failure.
func (h *Host) Fail(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, op)
		return
	}
	h.failures[op] = err
}

func (h *Host) emit(events ...browser.Event) {
	h.mu.Lock()
	fn := h.subscriber
	h.mu.Unlock()

	if fn == nil {
		return
	}
	for _, ev := range events {
		fn(ev)
	}
}

func (h *Host) addWindowLocked(w browser.Window) *browser.Window {
	if w.ID == 0 {
		w.ID = h.nextWindow
	}
	if w.ID >= h.nextWindow {
		h.nextWindow = w.ID + 1
	}
	if w.Type == "" {
		w.Type = browser.WindowTypeNormal
	}

	tabs := make([]browser.Tab, len(w.Tabs))
	for i, tab := range w.Tabs {
		if tab.ID == 0 {
			tab.ID = h.nextTab
		}
		if tab.ID >= h.nextTab {
			h.nextTab = tab.ID + 1
		}
		tab.WindowID = w.ID
		tabs[i] = tab
	}
	w.Tabs = tabs
	reindex(&w)

	if h.focused == browser.WindowIDNone {
		h.focused = w.ID
	}
	w.Focused = w.ID == h.focused

	stored := w
	h.windows[w.ID] = &stored
	return &stored
}

func (h *Host) failure(op string) error {
	return h.failures[op]
}

func reindex(w *browser.Window) {
	for i := range w.Tabs {
		w.Tabs[i].Index = i
		w.Tabs[i].WindowID = w.ID
	}
}

func copyWindow(w *browser.Window, populate bool) *browser.Window {
	c := *w
	if populate {
		c.Tabs = append([]browser.Tab(nil), w.Tabs...)
	} else {
		c.Tabs = nil
	}
	return &c
}

// findTabLocked returns the window and slice position of a tab.
func (h *Host) findTabLocked(tabID int) (*browser.Window, int, bool) {
	for _, w := range h.windows {
		for i := range w.Tabs {
			if w.Tabs[i].ID == tabID {
				return w, i, true
			}
		}
	}
	return nil, 0, false
}

func (h *Host) sortedWindowIDsLocked() []int {
	ids := make([]int, 0, len(h.windows))
	for id := range h.windows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetWindow implements browser.Windows.
func (h *Host) GetWindow(_ context.Context, windowID int, populate bool) (*browser.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("GetWindow"); err != nil {
		return nil, err
	}
	w, ok := h.windows[windowID]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", windowID, ErrNotFound)
	}
	return copyWindow(w, populate), nil
}

// ListWindows implements browser.Windows. Windows are returned by ascending id.
func (h *Host) ListWindows(_ context.Context, query browser.WindowQuery) ([]*browser.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("ListWindows"); err != nil {
		return nil, err
	}

	var result []*browser.Window
	for _, id := range h.sortedWindowIDsLocked() {
		w := h.windows[id]
		if len(query.Types) > 0 && !containsType(query.Types, w.Type) {
			continue
		}
		result = append(result, copyWindow(w, query.Populate))
	}
	return result, nil
}

func containsType(types []browser.WindowType, t browser.WindowType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// CreateWindow implements browser.Windows. The new window holds one active
// tab at opts.URL and takes focus.
func (h *Host) CreateWindow(_ context.Context, opts browser.CreateWindowOptions) (*browser.Window, error) {
	h.mu.Lock()
	if err := h.failure("CreateWindow"); err != nil {
		h.mu.Unlock()
		return nil, err
	}

	url := opts.URL
	if url == "" {
		url = "about:blank"
	}
	w := h.addWindowLocked(browser.Window{
		Type: browser.WindowTypeNormal,
		Tabs: []browser.Tab{{URL: url, Active: true, Highlighted: true}},
	})
	h.focusLocked(w.ID)
	result := copyWindow(w, true)
	h.mu.Unlock()

	h.emit(browser.TabCreated{Tab: result.Tabs[0]}, browser.WindowFocusChanged{WindowID: result.ID})
	return result, nil
}

// SetTitlePreface implements browser.Windows.
func (h *Host) SetTitlePreface(_ context.Context, windowID int, preface string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("SetTitlePreface"); err != nil {
		return err
	}
	w, ok := h.windows[windowID]
	if !ok {
		return fmt.Errorf("window %d: %w", windowID, ErrNotFound)
	}
	w.TitlePreface = preface
	return nil
}

// GetTab implements browser.Tabs.
func (h *Host) GetTab(_ context.Context, tabID int) (*browser.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("GetTab"); err != nil {
		return nil, err
	}
	w, i, ok := h.findTabLocked(tabID)
	if !ok {
		return nil, fmt.Errorf("tab %d: %w", tabID, ErrNotFound)
	}
	tab := w.Tabs[i]
	return &tab, nil
}

// QueryTabs implements browser.Tabs.
func (h *Host) QueryTabs(_ context.Context, query browser.TabQuery) ([]browser.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("QueryTabs"); err != nil {
		return nil, err
	}

	var result []browser.Tab
	for _, id := range h.sortedWindowIDsLocked() {
		if query.CurrentWindow && id != h.focused {
			continue
		}
		if query.WindowID != 0 && id != query.WindowID {
			continue
		}
		for _, tab := range h.windows[id].Tabs {
			if query.Highlighted && !tab.Highlighted {
				continue
			}
			result = append(result, tab)
		}
	}
	return result, nil
}

// CreateTab implements browser.Tabs.
func (h *Host) CreateTab(_ context.Context, opts browser.CreateTabOptions) (*browser.Tab, error) {
	h.mu.Lock()
	if err := h.failure("CreateTab"); err != nil {
		h.mu.Unlock()
		return nil, err
	}

	windowID := opts.WindowID
	if windowID == 0 {
		windowID = h.focused
	}
	w, ok := h.windows[windowID]
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("window %d: %w", windowID, ErrNotFound)
	}

	tab := browser.Tab{
		ID:        h.nextTab,
		WindowID:  w.ID,
		URL:       opts.URL,
		Active:    opts.Active,
		Discarded: opts.Discarded,
	}
	h.nextTab++

	if opts.Active {
		for i := range w.Tabs {
			w.Tabs[i].Active = false
		}
	}
	w.Tabs = insertTab(w.Tabs, tab, opts.Index)
	reindex(w)

	created := w.Tabs[indexOf(w.Tabs, tab.ID)]
	h.mu.Unlock()

	h.emit(browser.TabCreated{Tab: created})
	return &created, nil
}

func insertTab(tabs []browser.Tab, tab browser.Tab, index int) []browser.Tab {
	if index < 0 || index >= len(tabs) {
		return append(tabs, tab)
	}
	tabs = append(tabs, browser.Tab{})
	copy(tabs[index+1:], tabs[index:])
	tabs[index] = tab
	return tabs
}

func indexOf(tabs []browser.Tab, tabID int) int {
	for i, tab := range tabs {
		if tab.ID == tabID {
			return i
		}
	}
	return -1
}

// UpdateTab implements browser.Tabs.
func (h *Host) UpdateTab(_ context.Context, tabID int, opts browser.UpdateTabOptions) (*browser.Tab, error) {
	h.mu.Lock()
	if err := h.failure("UpdateTab"); err != nil {
		h.mu.Unlock()
		return nil, err
	}

	w, i, ok := h.findTabLocked(tabID)
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("tab %d: %w", tabID, ErrNotFound)
	}

	var events []browser.Event
	if opts.URL != "" && opts.URL != w.Tabs[i].URL {
		w.Tabs[i].URL = opts.URL
		w.Tabs[i].Discarded = false
		url := opts.URL
		events = append(events, browser.TabUpdated{TabID: tabID, Change: browser.TabChange{URL: &url}})
	}
	updated := w.Tabs[i]
	h.mu.Unlock()

	h.emit(events...)
	return &updated, nil
}

// MoveTabs implements browser.Tabs.
func (h *Host) MoveTabs(_ context.Context, tabIDs []int, opts browser.MoveOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("MoveTabs"); err != nil {
		return err
	}

	index := opts.Index
	for _, tabID := range tabIDs {
		src, i, ok := h.findTabLocked(tabID)
		if !ok {
			return fmt.Errorf("tab %d: %w", tabID, ErrNotFound)
		}

		dst := src
		if opts.WindowID != 0 {
			if dst, ok = h.windows[opts.WindowID]; !ok {
				return fmt.Errorf("window %d: %w", opts.WindowID, ErrNotFound)
			}
		}

		tab := src.Tabs[i]
		src.Tabs = append(src.Tabs[:i], src.Tabs[i+1:]...)
		reindex(src)

		dst.Tabs = insertTab(dst.Tabs, tab, index)
		reindex(dst)
		if index >= 0 {
			index++
		}
	}
	return nil
}

// RemoveTab closes a tab, as a user would.
func (h *Host) RemoveTab(tabID int) error {
	h.mu.Lock()
	w, i, ok := h.findTabLocked(tabID)
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("tab %d: %w", tabID, ErrNotFound)
	}
	w.Tabs = append(w.Tabs[:i], w.Tabs[i+1:]...)
	reindex(w)
	windowID := w.ID
	h.mu.Unlock()

	h.emit(browser.TabRemoved{TabID: tabID, WindowID: windowID})
	return nil
}

// RemoveWindow closes a window and all of its tabs.
func (h *Host) RemoveWindow(windowID int) error {
	h.mu.Lock()
	w, ok := h.windows[windowID]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("window %d: %w", windowID, ErrNotFound)
	}
	delete(h.windows, windowID)
	delete(h.badges, windowID)

	events := make([]browser.Event, 0, len(w.Tabs)+1)
	for _, tab := range w.Tabs {
		events = append(events, browser.TabRemoved{TabID: tab.ID, WindowID: windowID, IsWindowClosing: true})
	}
	events = append(events, browser.WindowRemoved{WindowID: windowID})
	if h.focused == windowID {
		h.focused = browser.WindowIDNone
		events = append(events, browser.WindowFocusChanged{WindowID: browser.WindowIDNone})
	}
	h.mu.Unlock()

	h.emit(events...)
	return nil
}

// FocusWindow gives a window focus.
func (h *Host) FocusWindow(windowID int) error {
	h.mu.Lock()
	if _, ok := h.windows[windowID]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("window %d: %w", windowID, ErrNotFound)
	}
	h.focusLocked(windowID)
	h.mu.Unlock()

	h.emit(browser.WindowFocusChanged{WindowID: windowID})
	return nil
}

// ClickMenu chooses a context-menu item on a tab.
func (h *Host) ClickMenu(itemID string, tabID int) error {
	h.mu.Lock()
	_, ok := h.menus[itemID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("menu item %q: %w", itemID, ErrNotFound)
	}

	h.emit(browser.MenuClicked{MenuItemID: itemID, TabID: tabID})
	return nil
}

func (h *Host) focusLocked(windowID int) {
	h.focused = windowID
	for id, w := range h.windows {
		w.Focused = id == windowID
	}
}

// SetBadgeText implements browser.Chrome.
func (h *Host) SetBadgeText(_ context.Context, windowID int, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("SetBadgeText"); err != nil {
		return err
	}
	if text == "" {
		delete(h.badges, windowID)
		return nil
	}
	h.badges[windowID] = text
	return nil
}

// CreateMenuItem implements browser.Chrome.
func (h *Host) CreateMenuItem(_ context.Context, item browser.MenuItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("CreateMenuItem"); err != nil {
		return err
	}
	if _, exists := h.menus[item.ID]; exists {
		return fmt.Errorf("menu item %q already exists", item.ID)
	}
	if item.ParentID != "" {
		if _, ok := h.menus[item.ParentID]; !ok {
			return fmt.Errorf("parent menu item %q: %w", item.ParentID, ErrNotFound)
		}
	}
	h.menus[item.ID] = item
	h.menuOrder = append(h.menuOrder, item.ID)
	return nil
}

// UpdateMenuItem implements browser.Chrome.
func (h *Host) UpdateMenuItem(_ context.Context, id, title string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("UpdateMenuItem"); err != nil {
		return err
	}
	item, ok := h.menus[id]
	if !ok {
		return fmt.Errorf("menu item %q: %w", id, ErrNotFound)
	}
	item.Title = title
	h.menus[id] = item
	return nil
}

// RemoveMenuItem implements browser.Chrome. Children of the item go with it.
func (h *Host) RemoveMenuItem(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("RemoveMenuItem"); err != nil {
		return err
	}
	if _, ok := h.menus[id]; !ok {
		return fmt.Errorf("menu item %q: %w", id, ErrNotFound)
	}

	kept := h.menuOrder[:0]
	for _, itemID := range h.menuOrder {
		item := h.menus[itemID]
		if itemID == id || item.ParentID == id {
			delete(h.menus, itemID)
			continue
		}
		kept = append(kept, itemID)
	}
	h.menuOrder = kept
	return nil
}

// Broadcast implements browser.Runtime.
func (h *Host) Broadcast(_ context.Context, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.failure("Broadcast"); err != nil {
		return err
	}
	h.broadcasts = append(h.broadcasts, message)
	return nil
}

// Badge returns the badge text of a window.
func (h *Host) Badge(windowID int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.badges[windowID]
}

// MenuItems returns the context-menu items in creation order.
func (h *Host) MenuItems() []browser.MenuItem {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := make([]browser.MenuItem, 0, len(h.menuOrder))
	for _, id := range h.menuOrder {
		items = append(items, h.menus[id])
	}
	return items
}

// Broadcasts returns every message sent to UI surfaces.
func (h *Host) Broadcasts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.broadcasts...)
}

// Window returns a populated copy of a window, or nil.
func (h *Host) Window(windowID int) *browser.Window {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.windows[windowID]
	if !ok {
		return nil
	}
	return copyWindow(w, true)
}

// WindowCount returns the number of open windows.
func (h *Host) WindowCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.windows)
}
