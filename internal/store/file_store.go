package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/filemanager"
)

const (
	filePrefix = "session-"
	fileSuffix = ".yaml"
)

// FileStore implements Store with one YAML file per session.
type FileStore struct {
	hooks

	dir string
	mu  sync.Mutex // serializes writers within the process
	fm  *filemanager.Manager[Session]
	now func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store keeping sessions under dataDir/sessions.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FileStore{
		dir: dir,
		fm:  filemanager.NewManager[Session](),
		now: time.Now,
	}, nil
}

// Dir returns the directory holding session files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) sessionPath(id string) string {
	return filepath.Join(s.dir, filePrefix+id+fileSuffix)
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// load reads one session; a missing file yields ErrSessionNotFound.
func (s *FileStore) load(ctx context.Context, id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	session, _, err := s.fm.Read(ctx, s.sessionPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	return session, nil
}

// list reads every session ordered by id. Unreadable files are skipped.
func (s *FileStore) list(ctx context.Context) ([]*Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(ids)

	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.load(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *FileStore) findByWindow(ctx context.Context, windowID int) (*Session, error) {
	if windowID == browser.WindowIDNone {
		return nil, ErrSessionNotFound{WindowID: windowID}
	}

	sessions, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if session.WindowID == windowID {
			return session, nil
		}
	}
	return nil, ErrSessionNotFound{WindowID: windowID}
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	return s.load(ctx, id)
}

// FindByWindow implements Store.
func (s *FileStore) FindByWindow(ctx context.Context, windowID int) (*Session, error) {
	return s.findByWindow(ctx, windowID)
}

// unbindOthers detaches every session other than keepID from windowID.
func (s *FileStore) unbindOthers(ctx context.Context, keepID string, windowID int) ([]event, error) {
	if windowID == browser.WindowIDNone {
		return nil, nil
	}

	sessions, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	var events []event
	for _, other := range sessions {
		if other.ID == keepID || other.WindowID != windowID {
			continue
		}
		changes := Changes{WindowID: ptr(browser.WindowIDNone)}
		changes.Apply(other)
		other.UpdatedAt = s.now()
		if err := s.fm.Write(ctx, s.sessionPath(other.ID), other); err != nil {
			return events, fmt.Errorf("failed to unbind session %s: %w", other.ID, err)
		}
		events = append(events, event{kind: eventUpdating, session: other, changes: changes})
	}
	return events, nil
}

// Put implements Store.
func (s *FileStore) Put(ctx context.Context, session *Session) error {
	if err := validateID(session.ID); err != nil {
		return err
	}

	events, err := s.put(ctx, session, false)
	s.fire(ctx, events)
	return err
}

// Add implements Store.
func (s *FileStore) Add(ctx context.Context, session *Session) error {
	if err := validateID(session.ID); err != nil {
		return err
	}

	events, err := s.put(ctx, session, true)
	s.fire(ctx, events)
	return err
}

func (s *FileStore) put(ctx context.Context, session *Session, insertOnly bool) ([]event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := session.Clone()
	now := s.now()

	existing, err := s.load(ctx, record.ID)
	switch {
	case err == nil && insertOnly:
		return nil, ErrSessionExists{ID: record.ID}
	case err == nil:
		record.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		existing = nil
		record.CreatedAt = now
	default:
		return nil, err
	}
	record.UpdatedAt = now

	events, err := s.unbindOthers(ctx, record.ID, record.WindowID)
	if err != nil {
		return events, err
	}

	if err := s.fm.Write(ctx, s.sessionPath(record.ID), record); err != nil {
		return events, fmt.Errorf("failed to write session %s: %w", record.ID, err)
	}

	if existing == nil {
		events = append(events, event{kind: eventCreating, session: record})
	} else {
		events = append(events, event{kind: eventUpdating, session: record, changes: Diff(existing, record)})
	}
	return events, nil
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, id string, changes Changes) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	updated, events, err := s.update(ctx, id, changes)
	s.fire(ctx, events)
	return updated, err
}

func (s *FileStore) update(ctx context.Context, id string, changes Changes) (*Session, []event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(ctx, id); err != nil {
		return nil, nil, err
	}

	var events []event
	if changes.WindowID != nil {
		unbound, err := s.unbindOthers(ctx, id, *changes.WindowID)
		events = append(events, unbound...)
		if err != nil {
			return nil, events, err
		}
	}

	var updated *Session
	err := s.fm.Update(ctx, s.sessionPath(id), func(session *Session) error {
		if session.ID == "" {
			// The file vanished between the check and the update.
			return ErrSessionNotFound{ID: id}
		}
		changes.Apply(session)
		session.UpdatedAt = s.now()
		updated = session.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, events, err
		}
		return nil, events, fmt.Errorf("failed to update session %s: %w", id, err)
	}

	events = append(events, event{kind: eventUpdating, session: updated, changes: changes})
	return updated, events, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	events, err := s.delete(ctx, id)
	s.fire(ctx, events)
	return err
}

func (s *FileStore) delete(ctx context.Context, id string) ([]event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.fm.Delete(ctx, s.sessionPath(id)); err != nil {
		return nil, fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return []event{{kind: eventDeleting, session: existing}}, nil
}

// Each implements Store.
func (s *FileStore) Each(ctx context.Context, fn func(*Session) error) error {
	sessions, err := s.list(ctx)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
	}
	return nil
}

// List returns every session ordered by id.
func (s *FileStore) List(ctx context.Context) ([]*Session, error) {
	return s.list(ctx)
}
