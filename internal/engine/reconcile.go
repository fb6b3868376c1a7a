package engine

import (
	"context"
	"errors"
	"slices"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

// SameTabs reports whether two URL lists hold the same URLs, ignoring order.
func SameTabs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// Reconcile compares a window's live tabs with its stored session.
//
// removedTabID names a tab that is being closed and may still be listed; pass
// browser.TabIDNone otherwise. In sync, the badge is cleared. On drift an
// auto-save session is updated and pushed to the companion; any other window
// gets the badge.
func (e *Engine) Reconcile(ctx context.Context, windowID, removedTabID int) {
	log := e.log.With("window", windowID)

	w, err := e.host.GetWindow(ctx, windowID, true)
	if err != nil {
		log.Error("failed to get window", "error", err)
		return
	}

	s, err := e.store.FindByWindow(ctx, windowID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to look up session", "error", err)
		return
	}

	live := browser.Without(w.Tabs, removedTabID)
	urls := browser.URLs(live, browser.TabIDNone)

	if s != nil && SameTabs(s.Tabs, urls) {
		log.Debug("in sync")
		e.clearBadge(ctx, windowID)
		return
	}

	if s == nil || !s.AutoSave {
		log.Debug("drifted")
		e.setBadge(ctx, windowID)
		return
	}

	e.autoSave(ctx, s, live, urls)
}

func (e *Engine) autoSave(ctx context.Context, s *store.Session, live []browser.Tab, urls []string) {
	log := e.log.With("session", s.ID, "window", s.WindowID)

	if _, err := e.store.Update(ctx, s.ID, store.Changes{Tabs: urls}); err != nil {
		log.Error("failed to save tabs", "error", err)
		return
	}

	// Never confirmed by the companion: there is no file to update yet.
	if !s.Confirmed() {
		log.Debug("saved locally")
		return
	}

	data, err := protocol.MarshalDocument(&protocol.SessionDocument{
		UUID:     s.ID,
		AutoSave: s.AutoSave,
		Tabs:     protocol.FilterTabs(live),
	})
	if err != nil {
		log.Error("failed to build session document", "error", err)
		return
	}

	e.conn.Send(protocol.NewUpdateSessionRequest(s.URI, data))
	log.Info("auto-saved", "tabs", len(urls))
}

func (e *Engine) tabUpdated(ctx context.Context, ev browser.TabUpdated) {
	if ev.Change.URL == nil && ev.Change.Title == nil {
		return
	}

	tab, err := e.host.GetTab(ctx, ev.TabID)
	if err != nil {
		e.log.Error("failed to get tab", "tab", ev.TabID, "error", err)
		return
	}
	if e.watched[tab.WindowID] {
		e.Reconcile(ctx, tab.WindowID, browser.TabIDNone)
	}
}
