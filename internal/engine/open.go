package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

var errNoTabs = errors.New("session has no tabs")

// open restores a saved session into a window on the companion's request.
// A session that is already open is left alone and gets no reply.
func (e *Engine) open(ctx context.Context, req *protocol.OpenSessionRequest) {
	log := e.log.With("request", req.ID, "name", req.Name)

	doc, err := protocol.UnmarshalDocument(req.Data)
	if err != nil {
		log.Warn("invalid session document", "error", err)
		e.conn.Send(protocol.OpenSessionResultWithError(req.ID, &protocol.Error{
			Code:        protocol.CodeInvalidDocument,
			Description: err.Error(),
		}))
		return
	}
	log = log.With("session", doc.UUID)

	_, err = e.store.Get(ctx, doc.UUID)
	if err == nil {
		log.Debug("session already open")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to look up session", "error", err)
		e.conn.Send(protocol.OpenSessionResultWithError(req.ID, &protocol.Error{
			Code:        protocol.CodeInternal,
			Description: err.Error(),
		}))
		return
	}

	windowID, err := e.restore(ctx, doc)
	if err != nil {
		log.Error("failed to restore session", "error", err)
		e.conn.Send(protocol.OpenSessionResultWithError(req.ID, &protocol.Error{
			Code:        protocol.CodeRestoreFailed,
			Description: err.Error(),
		}))
		return
	}

	e.conn.Send(protocol.OpenSessionResultWithSuccess(req.ID, true))

	session := &store.Session{
		ID:       doc.UUID,
		Name:     req.Name,
		URI:      req.URI,
		WindowID: windowID,
		Tabs:     doc.URLs(),
		AutoSave: doc.AutoSave,
	}
	if err := e.store.Add(ctx, session); err != nil {
		log.Error("failed to store restored session", "error", err)
		return
	}

	e.setTitle(ctx, windowID, req.Name)
	e.watch(windowID)
	log.Info("session restored", "window", windowID, "tabs", len(doc.Tabs))
}

// restore rebuilds the document's tabs in a blank window, or a new one, and
// returns the window id. Nothing is cleaned up on failure.
func (e *Engine) restore(ctx context.Context, doc *protocol.SessionDocument) (int, error) {
	if len(doc.Tabs) == 0 {
		return 0, errNoTabs
	}
	activeIndex := doc.ActiveIndex()
	active := doc.Tabs[activeIndex]

	blank, err := e.blankWindow(ctx)
	if err != nil {
		return 0, err
	}

	var windowID, tabID int
	if blank != nil {
		windowID, tabID = blank.ID, blank.Tabs[0].ID
		if _, err := e.host.UpdateTab(ctx, tabID, browser.UpdateTabOptions{URL: active.URL}); err != nil {
			return 0, fmt.Errorf("failed to navigate placeholder tab: %w", err)
		}
	} else {
		w, err := e.host.CreateWindow(ctx, browser.CreateWindowOptions{URL: active.URL})
		if err != nil {
			return 0, fmt.Errorf("failed to create window: %w", err)
		}
		if len(w.Tabs) == 0 {
			return 0, fmt.Errorf("window %d was created without a tab", w.ID)
		}
		windowID, tabID = w.ID, w.Tabs[0].ID
	}

	for i, tab := range doc.Tabs {
		if i == activeIndex {
			continue
		}
		_, err := e.host.CreateTab(ctx, browser.CreateTabOptions{
			WindowID:  windowID,
			URL:       tab.URL,
			Discarded: !tab.Active,
			Index:     -1,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create tab %s: %w", tab.URL, err)
		}
	}

	if err := e.host.MoveTabs(ctx, []int{tabID}, browser.MoveOptions{Index: activeIndex}); err != nil {
		return 0, fmt.Errorf("failed to move active tab: %w", err)
	}
	return windowID, nil
}

// blankWindow finds a normal window holding only the placeholder page, or
// returns nil when there is none.
func (e *Engine) blankWindow(ctx context.Context) (*browser.Window, error) {
	windows, err := e.host.ListWindows(ctx, browser.WindowQuery{
		Populate: true,
		Types:    []browser.WindowType{browser.WindowTypeNormal},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list windows: %w", err)
	}

	for _, w := range windows {
		if len(w.Tabs) == 1 && w.Tabs[0].URL == e.cfg.Browser.PlaceholderURL {
			return w, nil
		}
	}
	return nil, nil
}
