package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/browser/memory"
	"github.com/aki/amber/internal/core/config"
	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/engine"
	"github.com/aki/amber/internal/native"
	"github.com/aki/amber/internal/protocol"
	"github.com/aki/amber/internal/store"
)

// NewTestContainer creates a container over a fresh data directory.
func NewTestContainer(t *testing.T) *Container {
	t.Helper()

	c, err := NewContainer(t.TempDir(), logger.Nop())
	require.NoError(t, err, "Failed to create container")
	return c
}

func TestNewContainer(t *testing.T) {
	dataDir := t.TempDir()

	c, err := NewContainer(dataDir, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, dataDir, c.DataDir)
	assert.NotNil(t, c.ConfigManager)
	assert.NotNil(t, c.Config)
	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.Index)
	assert.Equal(t, filepath.Join(dataDir, "sessions"), c.Store.Dir())
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, config.ConfigFile), []byte("browser:\n  colour: red\n"), 0o644))

	_, err := NewContainer(dataDir, logger.Nop())
	assert.Error(t, err)
}

func TestNewContainerWithoutStore(t *testing.T) {
	c := NewContainerWithoutStore(t.TempDir(), logger.Nop())
	assert.NotNil(t, c.ConfigManager)
	assert.Nil(t, c.Store)
}

func TestContainer_IndexFollowsStore(t *testing.T) {
	ctx := context.Background()
	c := NewTestContainer(t)

	require.NoError(t, c.Store.Put(ctx, &store.Session{ID: "s1", WindowID: 1}))
	require.NoError(t, c.Store.Put(ctx, &store.Session{ID: "s2", WindowID: 2}))

	idx, ok := c.Index.Get(ctx, "s2")
	require.True(t, ok)
	assert.Equal(t, 2, int(idx))

	require.NoError(t, c.Store.Delete(ctx, "s1"))
	_, ok = c.Index.Get(ctx, "s1")
	assert.False(t, ok)

	require.NoError(t, c.Store.Put(ctx, &store.Session{ID: "s3", WindowID: 3}))
	idx, ok = c.Index.Get(ctx, "s3")
	require.True(t, ok)
	assert.Equal(t, 1, int(idx))
}

func TestContainer_ProcessConfig(t *testing.T) {
	c := NewTestContainer(t)
	c.Config.Connector.Command = config.Command{"/opt/amber/host"}

	cfg := c.ProcessConfig()
	assert.Equal(t, config.DefaultConnectorName, cfg.Name)
	assert.Equal(t, c.Config.Extension.ID, cfg.ExtensionID)
	assert.Equal(t, []string{"/opt/amber/host"}, cfg.Command)
}

func TestRuntime_CreateRoundTrip(t *testing.T) {
	c := NewTestContainer(t)
	host := memory.New(browser.Window{Tabs: []browser.Tab{{URL: "https://a"}}})

	local, remote := native.Pipe()
	rt := c.NewRuntime(host, func() (native.Port, error) { return local, nil })
	host.Subscribe(func(ev browser.Event) { rt.Engine.Dispatch(ev) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	companion := make(chan protocol.Message, 4)
	go func() {
		for {
			data, err := remote.Receive()
			if err != nil {
				close(companion)
				return
			}
			m, err := protocol.Decode(data)
			if err != nil {
				continue
			}
			if req, ok := m.(*protocol.CreateSessionRequest); ok {
				reply, _ := protocol.Encode(protocol.NewCreateSessionResult(req.ID, req.SessionName, "file:///work.yaml"))
				_ = remote.Send(reply)
			}
			companion <- m
		}
	}()

	require.NoError(t, rt.Engine.Start(ctx))
	go func() { _ = rt.Engine.Run(ctx) }()

	rt.Engine.Dispatch(engine.CreateRequest{
		SenderID: c.Config.Extension.ID,
		Name:     "work",
		WindowID: 1,
		Tabs:     host.Window(1).Tabs,
	})

	require.Eventually(t, func() bool {
		return host.Window(1).TitlePreface == "work – "
	}, 2*time.Second, 10*time.Millisecond)

	s, err := c.Store.FindByWindow(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "file:///work.yaml", s.URI)
	assert.Zero(t, rt.Pending.Len())

	require.NoError(t, rt.Close())
	_ = remote.Close()
}
