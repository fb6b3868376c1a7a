// Package filemanager reads and writes YAML documents under inter-process
// file locks, with compare-and-swap updates.
package filemanager

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// ErrConcurrentModification is returned when a file changed between read and write.
var ErrConcurrentModification = errors.New("file was modified concurrently")

// ErrLockTimeout is returned when a lock could not be taken in time.
var ErrLockTimeout = errors.New("timeout acquiring file lock")

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryInterval  = 100 * time.Millisecond
	maxUpdateRetries   = 10
)

// FileInfo identifies the content a read observed.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Digest  [sha256.Size]byte
}

// UpdateFunc modifies a document in place.
type UpdateFunc[T any] func(data *T) error

// Manager handles YAML documents of type T.
//
// Locks are taken on a sidecar "<path>.lock" file so that the atomic rename
// of the document never swaps the inode a lock holder is waiting on.
type Manager[T any] struct {
	lockTimeout time.Duration
	fileMode    os.FileMode
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	lockTimeout time.Duration
	fileMode    os.FileMode
}

// WithLockTimeout bounds how long an operation waits for its lock.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) { o.lockTimeout = d }
}

// WithFileMode sets the permissions of written documents.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) { o.fileMode = mode }
}

// NewManager creates a manager.
func NewManager[T any](opts ...Option) *Manager[T] {
	o := options{lockTimeout: defaultLockTimeout, fileMode: 0o600}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[T]{lockTimeout: o.lockTimeout, fileMode: o.fileMode}
}

func lockPath(path string) string {
	return path + ".lock"
}

// lock takes a shared or exclusive lock for path and returns its release func.
func (m *Manager[T]) lock(ctx context.Context, path string, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	fl := flock.New(lockPath(path))

	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = fl.TryLockContext(lockCtx, lockRetryInterval)
	} else {
		locked, err = fl.TryRLockContext(lockCtx, lockRetryInterval)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return func() { _ = fl.Unlock() }, nil
}

// Read loads a document under a shared lock. A missing file yields an error
// matching fs.ErrNotExist.
func (m *Manager[T]) Read(ctx context.Context, path string) (*T, *FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}

	unlock, err := m.lock(ctx, path, false)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	return m.readLocked(path)
}

func (m *Manager[T]) readLocked(path string) (*T, *FileInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var result T
	if err := yaml.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}

	return &result, &FileInfo{Path: path, ModTime: stat.ModTime(), Digest: sha256.Sum256(raw)}, nil
}

// Write stores a document under an exclusive lock, replacing any content.
func (m *Manager[T]) Write(ctx context.Context, path string, data *T) error {
	return m.WriteWithCAS(ctx, path, data, nil)
}

// WriteWithCAS stores a document only if the file still holds the content
// described by expected. A nil expected skips the check; an expected file
// that has since disappeared counts as modified.
func (m *Manager[T]) WriteWithCAS(ctx context.Context, path string, data *T, expected *FileInfo) error {
	unlock, err := m.lock(ctx, path, true)
	if err != nil {
		return err
	}
	defer unlock()

	if expected != nil {
		current, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err != nil {
			return ErrConcurrentModification
		}
		if sha256.Sum256(current) != expected.Digest {
			return ErrConcurrentModification
		}
	}

	return m.writeLocked(path, data)
}

func (m *Manager[T]) writeLocked(path string, data *T) error {
	encoded, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, m.fileMode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Update applies fn to the current document and writes it back, retrying
// when another writer got in between. A missing file starts from the zero T.
func (m *Manager[T]) Update(ctx context.Context, path string, fn UpdateFunc[T]) error {
	for i := 0; i < maxUpdateRetries; i++ {
		data, info, err := m.Read(ctx, path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			data = new(T)
			info = nil
		case err != nil:
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := fn(data); err != nil {
			return err
		}

		if info == nil {
			err = m.createExclusive(ctx, path, data)
		} else {
			err = m.WriteWithCAS(ctx, path, data, info)
		}
		if errors.Is(err, ErrConcurrentModification) {
			continue
		}
		return err
	}

	return fmt.Errorf("failed after %d retries: %w", maxUpdateRetries, ErrConcurrentModification)
}

// createExclusive writes data only if path does not exist yet.
func (m *Manager[T]) createExclusive(ctx context.Context, path string, data *T) error {
	unlock, err := m.lock(ctx, path, true)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return ErrConcurrentModification
	}
	return m.writeLocked(path, data)
}

// Delete removes a document and its lock file. Deleting a missing file is not
// an error.
func (m *Manager[T]) Delete(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	unlock, err := m.lock(ctx, path, true)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		unlock()
		return fmt.Errorf("failed to remove file: %w", err)
	}
	unlock()

	_ = os.Remove(lockPath(path))
	return nil
}
