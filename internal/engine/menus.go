package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

// MoveToSessionMenuID is the parent of the per-session tab menu items.
const MoveToSessionMenuID = "move-to-session"

const moveToSessionTitle = "Move to Session"

var tabContexts = []string{"tab"}

type menuEntry struct {
	windowID int
	name     string
}

// menuBook keeps the "Move to Session" tab menu listing every session
// window except the focused one. It is driven by store hooks, which may run
// on any goroutine that writes the store.
type menuBook struct {
	host browser.Chrome
	log  logger.Logger

	mu       sync.Mutex
	sessions map[string]menuEntry
	active   int
	parent   bool
	shown    map[int]string
}

func newMenuBook(host browser.Chrome, log logger.Logger) *menuBook {
	return &menuBook{
		host:     host,
		log:      log,
		sessions: make(map[string]menuEntry),
		active:   browser.WindowIDNone,
		shown:    make(map[int]string),
	}
}

// reset replaces the tracked sessions, typically at startup.
func (m *menuBook) reset(ctx context.Context, sessions []*store.Session, active int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]menuEntry, len(sessions))
	for _, s := range sessions {
		m.sessions[s.ID] = menuEntry{windowID: s.WindowID, name: s.Name}
	}
	m.active = active
	m.refresh(ctx)
}

// sessionCreated tracks a new session; its window becomes the active one.
func (m *menuBook) sessionCreated(ctx context.Context, s *store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = menuEntry{windowID: s.WindowID, name: s.Name}
	if s.WindowID != browser.WindowIDNone {
		m.active = s.WindowID
	}
	m.refresh(ctx)
}

func (m *menuBook) sessionUpdated(ctx context.Context, s *store.Session, changes store.Changes) {
	if changes.Name == nil && changes.WindowID == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = menuEntry{windowID: s.WindowID, name: s.Name}
	m.refresh(ctx)
}

func (m *menuBook) sessionDeleted(ctx context.Context, s *store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, s.ID)
	m.refresh(ctx)
}

func (m *menuBook) focus(ctx context.Context, windowID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = windowID
	m.refresh(ctx)
}

func menuTitle(e menuEntry) string {
	if e.name == "" {
		return fmt.Sprintf("Window %d", e.windowID)
	}
	return e.name
}

// refresh brings the host menu in line with the tracked sessions. Callers
// hold m.mu.
func (m *menuBook) refresh(ctx context.Context) {
	want := make(map[int]string)
	for _, entry := range m.sessions {
		if entry.windowID == browser.WindowIDNone || entry.windowID == m.active {
			continue
		}
		want[entry.windowID] = menuTitle(entry)
	}

	if len(want) == 0 {
		if m.parent {
			if err := m.host.RemoveMenuItem(ctx, MoveToSessionMenuID); err != nil {
				m.log.Error("failed to remove menu", "error", err)
			}
			m.parent = false
			m.shown = make(map[int]string)
		}
		return
	}

	if !m.parent {
		err := m.host.CreateMenuItem(ctx, browser.MenuItem{
			ID:       MoveToSessionMenuID,
			Title:    moveToSessionTitle,
			Contexts: tabContexts,
		})
		if err != nil {
			m.log.Error("failed to create menu", "error", err)
			return
		}
		m.parent = true
	}

	for windowID := range m.shown {
		if _, ok := want[windowID]; ok {
			continue
		}
		if err := m.host.RemoveMenuItem(ctx, strconv.Itoa(windowID)); err != nil {
			m.log.Error("failed to remove menu item", "window", windowID, "error", err)
		}
		delete(m.shown, windowID)
	}

	ids := make([]int, 0, len(want))
	for windowID := range want {
		ids = append(ids, windowID)
	}
	slices.Sort(ids)

	for _, windowID := range ids {
		title := want[windowID]
		current, ok := m.shown[windowID]
		switch {
		case !ok:
			err := m.host.CreateMenuItem(ctx, browser.MenuItem{
				ID:       strconv.Itoa(windowID),
				ParentID: MoveToSessionMenuID,
				Title:    title,
				Contexts: tabContexts,
			})
			if err != nil {
				m.log.Error("failed to create menu item", "window", windowID, "error", err)
				continue
			}
		case current != title:
			if err := m.host.UpdateMenuItem(ctx, strconv.Itoa(windowID), title); err != nil {
				m.log.Error("failed to rename menu item", "window", windowID, "error", err)
				continue
			}
		default:
			continue
		}
		m.shown[windowID] = title
	}
}

// menuClicked moves the highlighted tabs of the current window to the end
// of the chosen session's window.
func (e *Engine) menuClicked(ctx context.Context, ev browser.MenuClicked) {
	if ev.MenuItemID == MoveToSessionMenuID {
		return
	}
	target, err := strconv.Atoi(ev.MenuItemID)
	if err != nil {
		e.log.Debug("ignoring unknown menu item", "item", ev.MenuItemID)
		return
	}

	tabs, err := e.host.QueryTabs(ctx, browser.TabQuery{Highlighted: true, CurrentWindow: true})
	if err != nil {
		e.log.Error("failed to query highlighted tabs", "error", err)
		return
	}

	ids := make([]int, 0, len(tabs))
	for _, tab := range tabs {
		ids = append(ids, tab.ID)
	}
	if len(ids) == 0 {
		return
	}

	if err := e.host.MoveTabs(ctx, ids, browser.MoveOptions{WindowID: target, Index: -1}); err != nil {
		e.log.Error("failed to move tabs", "window", target, "error", err)
		return
	}
	e.log.Info("moved tabs", "window", target, "tabs", len(ids))
}

// event handles companion notifications.
func (e *Engine) event(ctx context.Context, ev *protocol.Event) {
	switch ev.Name {
	case EventDialogShown:
		e.broadcast(ctx, BroadcastClose)
	default:
		e.log.Debug("ignoring companion event", "name", ev.Name)
	}
}
