// Package index hands out short numeric indexes for session ids, so the
// command line can address a session as "2" instead of a UUID.
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Index is a short session number, starting at 1.
type Index int

func (i Index) String() string { return strconv.Itoa(int(i)) }

// state is the on-disk allocation table.
type state struct {
	Counter  int            `yaml:"counter"`
	Active   map[int]string `yaml:"active"`
	Released []int          `yaml:"released,omitempty"`
}

func (s *state) lookup(id string) (int, bool) {
	for idx, active := range s.Active {
		if active == id {
			return idx, true
		}
	}
	return 0, false
}

// Manager allocates indexes, reusing the smallest released one first.
type Manager struct {
	mu        sync.Mutex
	lock      *flock.Flock
	stateFile string
}

// NewManager creates a manager keeping its table under dataDir/index.
func NewManager(dataDir string) (*Manager, error) {
	dir := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	stateFile := filepath.Join(dir, "sessions.yaml")
	return &Manager{
		lock:      flock.New(stateFile + ".lock"),
		stateFile: stateFile,
	}, nil
}

// with runs fn on the loaded table under both locks and saves it when fn
// reports a change.
func (m *Manager) with(ctx context.Context, exclusive bool, fn func(*state) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = m.lock.TryLockContext(ctx, 50*time.Millisecond)
	} else {
		locked, err = m.lock.TryRLockContext(ctx, 50*time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("failed to lock index: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock index")
	}
	defer func() { _ = m.lock.Unlock() }()

	st, err := m.load()
	if err != nil {
		return err
	}

	changed, err := fn(st)
	if err != nil || !changed {
		return err
	}
	return m.save(st)
}

func (m *Manager) load() (*state, error) {
	st := &state{Active: make(map[int]string)}

	data, err := os.ReadFile(m.stateFile)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	if st.Active == nil {
		st.Active = make(map[int]string)
	}
	return st, nil
}

func (m *Manager) save(st *state) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", m.stateFile, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, m.stateFile); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}

// Acquire returns the index of a session, allocating one if needed.
func (m *Manager) Acquire(ctx context.Context, sessionID string) (Index, error) {
	var result int
	err := m.with(ctx, true, func(st *state) (bool, error) {
		if idx, ok := st.lookup(sessionID); ok {
			result = idx
			return false, nil
		}

		if len(st.Released) > 0 {
			sort.Ints(st.Released)
			result = st.Released[0]
			st.Released = st.Released[1:]
		} else {
			st.Counter++
			result = st.Counter
		}
		st.Active[result] = sessionID
		return true, nil
	})
	return Index(result), err
}

// Release frees the index of a session. Unknown sessions are ignored.
func (m *Manager) Release(ctx context.Context, sessionID string) error {
	return m.with(ctx, true, func(st *state) (bool, error) {
		idx, ok := st.lookup(sessionID)
		if !ok {
			return false, nil
		}
		delete(st.Active, idx)
		st.Released = append(st.Released, idx)
		return true, nil
	})
}

// Get returns the index of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (Index, bool) {
	var (
		result int
		found  bool
	)
	err := m.with(ctx, false, func(st *state) (bool, error) {
		result, found = st.lookup(sessionID)
		return false, nil
	})
	if err != nil {
		return 0, false
	}
	return Index(result), found
}

// Lookup returns the session holding an index.
func (m *Manager) Lookup(ctx context.Context, idx Index) (string, bool) {
	var (
		id    string
		found bool
	)
	err := m.with(ctx, false, func(st *state) (bool, error) {
		id, found = st.Active[int(idx)]
		return false, nil
	})
	if err != nil {
		return "", false
	}
	return id, found
}

// Resolve turns a command-line reference into a session id: a known index
// maps to its session, anything else is returned unchanged.
func (m *Manager) Resolve(ctx context.Context, ref string) string {
	n, err := strconv.Atoi(ref)
	if err != nil || n <= 0 {
		return ref
	}
	if id, ok := m.Lookup(ctx, Index(n)); ok {
		return id
	}
	return ref
}
