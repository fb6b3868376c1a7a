package filemanager

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string   `yaml:"name"`
	Count int      `yaml:"count"`
	Tabs  []string `yaml:"tabs,omitempty"`
}

func TestManager_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()

	require.NoError(t, mgr.Write(ctx, path, &record{Name: "work", Tabs: []string{"https://a"}}))

	got, info, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, &record{Name: "work", Tabs: []string{"https://a"}}, got)
	assert.Equal(t, path, info.Path)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestManager_ReadMissing(t *testing.T) {
	mgr := NewManager[record]()

	_, _, err := mgr.Read(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestManager_WriteWithCAS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()

	require.NoError(t, mgr.Write(ctx, path, &record{Count: 1}))
	_, info, err := mgr.Read(ctx, path)
	require.NoError(t, err)

	require.NoError(t, mgr.WriteWithCAS(ctx, path, &record{Count: 2}, info))

	// info is now stale.
	err = mgr.WriteWithCAS(ctx, path, &record{Count: 3}, info)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	got, _, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
}

func TestManager_WriteWithCAS_Deleted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()

	require.NoError(t, mgr.Write(ctx, path, &record{Count: 1}))
	_, info, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	assert.ErrorIs(t, mgr.WriteWithCAS(ctx, path, &record{Count: 2}, info), ErrConcurrentModification)
}

func TestManager_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()

	require.NoError(t, mgr.Update(ctx, path, func(r *record) error {
		r.Name = "created"
		return nil
	}))
	require.NoError(t, mgr.Update(ctx, path, func(r *record) error {
		r.Count = 5
		return nil
	}))

	got, _, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, &record{Name: "created", Count: 5}, got)
}

func TestManager_UpdateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()
	require.NoError(t, mgr.Write(ctx, path, &record{Name: "kept"}))

	boom := errors.New("boom")
	err := mgr.Update(ctx, path, func(r *record) error {
		r.Name = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()
	require.NoError(t, mgr.Write(ctx, path, &record{}))

	const workers, increments = 4, 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				err := mgr.Update(ctx, path, func(r *record) error {
					r.Count++
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, _, err := mgr.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, workers*increments, got.Count)
}

func TestManager_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record]()
	ctx := context.Background()

	require.NoError(t, mgr.Write(ctx, path, &record{Name: "gone"}))
	require.NoError(t, mgr.Delete(ctx, path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(lockPath(path))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, mgr.Delete(ctx, path))
}

func TestManager_LockTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a lock timeout")
	}

	path := filepath.Join(t.TempDir(), "record.yaml")
	mgr := NewManager[record](WithLockTimeout(150 * time.Millisecond))
	ctx := context.Background()
	require.NoError(t, mgr.Write(ctx, path, &record{}))

	holder := flock.New(lockPath(path))
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = holder.Unlock() }()

	err = mgr.Write(ctx, path, &record{Count: 1})
	assert.ErrorIs(t, err, ErrLockTimeout)
}
