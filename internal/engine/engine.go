// Package engine keeps browser windows and stored sessions in step.
//
// The engine is a single event loop. Browser events, inbound companion
// messages and save requests from the UI are queued with Dispatch and handled
// one at a time by Run, so reconciliation passes for the same window never
// interleave.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/core/config"
	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/native"
	"github.com/aki/amber/internal/pending"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

// BroadcastClose asks UI surfaces to close themselves.
const BroadcastClose = "close"

// EventDialogShown is sent by the companion once its save dialog is up.
const EventDialogShown = "dialog-shown"

// Event is anything the loop handles: a browser.Event, an inbound
// protocol.Message or a CreateRequest.
type Event any

// Connector is the companion channel as seen by the engine.
type Connector interface {
	Send(m protocol.Message)
	OnMessage(fn native.Handler)
	Port() (native.Port, error)
}

// Engine reconciles windows against stored sessions.
type Engine struct {
	cfg     *config.Config
	host    browser.Host
	store   store.Store
	conn    Connector
	pending *pending.Table
	log     logger.Logger

	// watched holds windows whose tab mutations are reconciled. Only the
	// loop goroutine touches it.
	watched map[int]bool
	menus   *menuBook

	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
}

// New creates an engine and hooks it to the connector and the store.
func New(cfg *config.Config, host browser.Host, st store.Store, conn Connector, table *pending.Table, log logger.Logger) *Engine {
	log = log.WithGroup("engine")

	e := &Engine{
		cfg:     cfg,
		host:    host,
		store:   st,
		conn:    conn,
		pending: table,
		log:     log,
		watched: make(map[int]bool),
		menus:   newMenuBook(host, log),
		wake:    make(chan struct{}, 1),
	}

	conn.OnMessage(func(m protocol.Message) { e.Dispatch(m) })

	st.OnCreating(e.menus.sessionCreated)
	st.OnUpdating(e.menus.sessionUpdated)
	st.OnDeleting(e.menus.sessionDeleted)

	return e
}

// DefaultAutoSave is the initial state of the auto-save choice offered to
// the user when saving a window.
func (e *Engine) DefaultAutoSave() bool {
	return e.cfg.Extension.AutoSaveDefault
}

// Dispatch queues an event. It never blocks, so the host may call it from
// inside a handler.
func (e *Engine) Dispatch(ev Event) {
	e.mu.Lock()
	e.queue = append(e.queue, ev)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) next() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) == 0 {
		return nil, false
	}
	ev := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return ev, true
}

// drain handles queued events until the queue is empty.
func (e *Engine) drain(ctx context.Context) {
	for ctx.Err() == nil {
		ev, ok := e.next()
		if !ok {
			return
		}
		e.Handle(ctx, ev)
	}
}

// Run handles queued events until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine started")
	defer e.log.Info("engine stopped")

	for {
		e.drain(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-e.wake:
		}
	}
}

// Handle processes one event synchronously. Failures are logged.
func (e *Engine) Handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case CreateRequest:
		e.create(ctx, ev)
	case *CreateRequest:
		e.create(ctx, *ev)

	case *protocol.CreateSessionResult:
		e.confirm(ctx, ev)
	case *protocol.OpenSessionRequest:
		e.open(ctx, ev)
	case *protocol.Event:
		e.event(ctx, ev)
	case protocol.Message:
		e.log.Debug("ignoring inbound message", "method", ev.Kind(), "id", ev.MessageID())

	case browser.TabCreated:
		if e.watched[ev.Tab.WindowID] {
			e.Reconcile(ctx, ev.Tab.WindowID, browser.TabIDNone)
		}
	case browser.TabRemoved:
		// Whole windows are cleaned up by WindowRemoved.
		if ev.IsWindowClosing {
			return
		}
		if e.watched[ev.WindowID] {
			e.Reconcile(ctx, ev.WindowID, ev.TabID)
		}
	case browser.TabUpdated:
		e.tabUpdated(ctx, ev)
	case browser.WindowFocusChanged:
		if ev.WindowID != browser.WindowIDNone {
			e.menus.focus(ctx, ev.WindowID)
		}
	case browser.WindowRemoved:
		e.windowRemoved(ctx, ev.WindowID)
	case browser.MenuClicked:
		e.menuClicked(ctx, ev)

	default:
		e.log.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// Start rebinds stored sessions to the open windows whose tabs match, then
// opens the companion channel, which sends the handshake.
func (e *Engine) Start(ctx context.Context) error {
	windows, err := e.host.ListWindows(ctx, browser.WindowQuery{Populate: true})
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}

	open := make(map[int]bool, len(windows))
	focused := browser.WindowIDNone
	for _, w := range windows {
		open[w.ID] = true
		if w.Focused {
			focused = w.ID
		}
	}

	claimed := make(map[int]bool)
	err = e.store.Each(ctx, func(s *store.Session) error {
		if w := e.match(s, windows, claimed); w != nil {
			claimed[w.ID] = true
			e.rebind(ctx, s, w.ID)
			return nil
		}

		// Window ids do not survive a browser restart. A binding that did not
		// match is stale even when a window with that id is open.
		if s.WindowID != browser.WindowIDNone {
			if _, err := e.store.Update(ctx, s.ID, store.Changes{WindowID: ptr(browser.WindowIDNone)}); err != nil {
				e.log.Error("failed to unbind session", "session", s.ID, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}

	if err := e.trackOpenSessions(ctx, open, focused); err != nil {
		return err
	}

	if _, err := e.conn.Port(); err != nil {
		e.log.Error("companion unavailable", "error", err)
	}
	return nil
}

// match returns the first unclaimed window, by ascending id, whose tab URLs
// equal the session's.
func (e *Engine) match(s *store.Session, windows []*browser.Window, claimed map[int]bool) *browser.Window {
	if len(s.Tabs) == 0 {
		return nil
	}
	for _, w := range windows {
		if claimed[w.ID] {
			continue
		}
		if SameTabs(s.Tabs, browser.URLs(w.Tabs, browser.TabIDNone)) {
			return w
		}
	}
	return nil
}

func (e *Engine) rebind(ctx context.Context, s *store.Session, windowID int) {
	log := e.log.With("session", s.ID, "window", windowID)

	e.setTitle(ctx, windowID, s.Name)

	rebound := s.Clone()
	rebound.WindowID = windowID
	if err := e.store.Put(ctx, rebound); err != nil {
		log.Error("failed to rebind session", "error", err)
		return
	}

	e.watch(windowID)
	log.Info("session rebound")
}

func (e *Engine) trackOpenSessions(ctx context.Context, open map[int]bool, focused int) error {
	var tracked []*store.Session
	err := e.store.Each(ctx, func(s *store.Session) error {
		if open[s.WindowID] {
			tracked = append(tracked, s)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}

	e.menus.reset(ctx, tracked, focused)
	return nil
}

func (e *Engine) watch(windowID int) {
	e.watched[windowID] = true
}

// Watching reports whether tab mutations of a window are reconciled.
func (e *Engine) Watching(windowID int) bool {
	return e.watched[windowID]
}

func (e *Engine) setTitle(ctx context.Context, windowID int, name string) {
	preface := browser.TitlePreface(name, e.cfg.Browser.TitleSeparator)
	if err := e.host.SetTitlePreface(ctx, windowID, preface); err != nil {
		e.log.Error("failed to set window title", "window", windowID, "error", err)
	}
}

func (e *Engine) setBadge(ctx context.Context, windowID int) {
	if err := e.host.SetBadgeText(ctx, windowID, e.cfg.Browser.BadgeText); err != nil {
		e.log.Error("failed to set badge", "window", windowID, "error", err)
	}
}

func (e *Engine) clearBadge(ctx context.Context, windowID int) {
	if err := e.host.SetBadgeText(ctx, windowID, ""); err != nil {
		e.log.Error("failed to clear badge", "window", windowID, "error", err)
	}
}

func (e *Engine) broadcast(ctx context.Context, message string) {
	if err := e.host.Broadcast(ctx, message); err != nil {
		e.log.Error("failed to broadcast", "message", message, "error", err)
	}
}

// windowRemoved deletes the session bound to a closed window.
func (e *Engine) windowRemoved(ctx context.Context, windowID int) {
	delete(e.watched, windowID)

	s, err := e.store.FindByWindow(ctx, windowID)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		e.log.Error("failed to look up session", "window", windowID, "error", err)
		return
	}

	if err := e.store.Delete(ctx, s.ID); err != nil {
		e.log.Error("failed to delete session", "session", s.ID, "error", err)
		return
	}
	e.log.Info("session closed", "session", s.ID, "window", windowID)
}

func ptr[T any](v T) *T { return &v }
