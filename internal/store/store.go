package store

import (
	"context"
	"sync"
)

// Store persists sessions.
//
// At most one session is bound to a window: writing a session onto a window
// held by another record resets that record's WindowID to
// browser.WindowIDNone.
type Store interface {
	// Get returns the session with the given id.
	Get(ctx context.Context, id string) (*Session, error)

	// FindByWindow returns the session bound to a window.
	FindByWindow(ctx context.Context, windowID int) (*Session, error)

	// Put inserts or replaces a session.
	Put(ctx context.Context, session *Session) error

	// Add inserts a session, failing with ErrAlreadyExists for a known id.
	Add(ctx context.Context, session *Session) error

	// Update applies a partial update and returns the result.
	Update(ctx context.Context, id string, changes Changes) (*Session, error)

	// Delete removes a session. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error

	// Each calls fn for every session in id order until fn returns an error.
	Each(ctx context.Context, fn func(*Session) error) error

	// OnCreating registers a hook fired after a session is inserted.
	OnCreating(fn CreatingHook)

	// OnUpdating registers a hook fired after a session is changed.
	OnUpdating(fn UpdatingHook)

	// OnDeleting registers a hook fired after a session is removed.
	OnDeleting(fn DeletingHook)
}

// CreatingHook observes inserted sessions.
type CreatingHook func(ctx context.Context, session *Session)

// UpdatingHook observes changed sessions together with what changed.
type UpdatingHook func(ctx context.Context, session *Session, changes Changes)

// DeletingHook observes removed sessions.
type DeletingHook func(ctx context.Context, session *Session)

// hooks holds registered observers. Hooks run synchronously on the writing
// goroutine once the write is on disk and the store's own lock is released,
// so they may call back into the store.
type hooks struct {
	mu       sync.RWMutex
	creating []CreatingHook
	updating []UpdatingHook
	deleting []DeletingHook
}

// OnCreating implements Store.
func (h *hooks) OnCreating(fn CreatingHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.creating = append(h.creating, fn)
}

// OnUpdating implements Store.
func (h *hooks) OnUpdating(fn UpdatingHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updating = append(h.updating, fn)
}

// OnDeleting implements Store.
func (h *hooks) OnDeleting(fn DeletingHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleting = append(h.deleting, fn)
}

// event is one hook invocation queued during a write.
type event struct {
	kind    eventKind
	session *Session
	changes Changes
}

type eventKind int

const (
	eventCreating eventKind = iota
	eventUpdating
	eventDeleting
)

func (h *hooks) fire(ctx context.Context, events []event) {
	h.mu.RLock()
	creating := h.creating
	updating := h.updating
	deleting := h.deleting
	h.mu.RUnlock()

	for _, ev := range events {
		switch ev.kind {
		case eventCreating:
			for _, fn := range creating {
				fn(ctx, ev.session.Clone())
			}
		case eventUpdating:
			if ev.changes.IsZero() {
				continue
			}
			for _, fn := range updating {
				fn(ctx, ev.session.Clone(), ev.changes)
			}
		case eventDeleting:
			for _, fn := range deleting {
				fn(ctx, ev.session.Clone())
			}
		}
	}
}
