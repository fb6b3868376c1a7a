package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

// CreateRequest is a save submitted by the UI for one window.
type CreateRequest struct {
	// SenderID identifies the submitting extension; anything other than the
	// configured extension id is ignored.
	SenderID string
	Name     string
	WindowID int
	Tabs     []browser.Tab
	AutoSave bool
}

// create stores the window's session optimistically and asks the companion
// to save it. Watching starts once the companion confirms.
func (e *Engine) create(ctx context.Context, req CreateRequest) {
	if req.SenderID != e.cfg.Extension.ID {
		e.log.Debug("ignoring request from foreign sender", "sender", req.SenderID)
		return
	}

	log := e.log.With("window", req.WindowID)

	session := &store.Session{
		WindowID: req.WindowID,
		Tabs:     browser.URLs(req.Tabs, browser.TabIDNone),
		AutoSave: req.AutoSave,
	}

	existing, err := e.store.FindByWindow(ctx, req.WindowID)
	switch {
	case err == nil:
		session.ID = existing.ID
		session.Name = existing.Name
		session.URI = existing.URI
	case errors.Is(err, store.ErrNotFound):
		session.ID = uuid.NewString()
	default:
		log.Error("failed to look up session", "error", err)
		return
	}
	log = log.With("session", session.ID)

	if err := e.store.Put(ctx, session); err != nil {
		log.Error("failed to store session", "error", err)
		return
	}

	data, err := protocol.MarshalDocument(&protocol.SessionDocument{
		UUID:     session.ID,
		AutoSave: session.AutoSave,
		Tabs:     protocol.Snapshots(req.Tabs),
	})
	if err != nil {
		log.Error("failed to build session document", "error", err)
		return
	}

	request := protocol.NewCreateSessionRequest(req.Name, data)
	e.pending.Register(request.ID, session.ID)
	e.conn.Send(request)
	log.Info("save requested", "request", request.ID, "name", req.Name)
}

// confirm applies the companion's answer to a create request.
func (e *Engine) confirm(ctx context.Context, result *protocol.CreateSessionResult) {
	id, ok := e.pending.Resolve(result.Context)
	if !ok {
		e.log.Debug("dropping uncorrelated result", "context", result.Context)
		return
	}
	log := e.log.With("session", id, "request", result.Context)

	if result.Error != nil {
		log.Warn("companion failed to save session", "code", result.Error.Code, "description", result.Error.Description)
		return
	}
	if result.Data == nil {
		log.Debug("dropping result without data")
		return
	}

	s, err := e.store.Update(ctx, id, store.Changes{
		Name: ptr(result.Data.Name),
		URI:  ptr(result.Data.URI),
	})
	if err != nil {
		log.Error("failed to confirm session", "error", err)
		return
	}

	if s.WindowID != browser.WindowIDNone {
		e.clearBadge(ctx, s.WindowID)
		e.setTitle(ctx, s.WindowID, s.Name)
		e.watch(s.WindowID)
	}
	e.broadcast(ctx, BroadcastClose)
	log.Info("session saved", "name", s.Name, "uri", s.URI)
}
