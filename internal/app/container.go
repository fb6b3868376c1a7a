// Package app provides the dependency container for the application
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/core/config"
	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/engine"
	"github.com/aki/amber/internal/index"
	"github.com/aki/amber/internal/native"
	"github.com/aki/amber/internal/pending"
	"github.com/aki/amber/internal/store"
)

// companionStopTimeout bounds the wait for the companion to exit.
const companionStopTimeout = 5 * time.Second

// Container holds the long-lived objects shared by every command. It is
// built once at startup and passed down explicitly.
type Container struct {
	// DataDir is the amber data directory
	DataDir string

	ConfigManager *config.Manager
	Config        *config.Config
	Logger        logger.Logger

	Store *store.FileStore
	Index *index.Manager
}

// NewContainer loads the configuration and opens the session store. Session
// indexes follow store writes.
func NewContainer(dataDir string, log logger.Logger) (*Container, error) {
	c := &Container{
		DataDir: dataDir,
		Logger:  log,
	}

	c.ConfigManager = config.NewManager(dataDir)

	var err error
	c.Config, err = c.ConfigManager.Load()
	if err != nil {
		return nil, err
	}

	c.Store, err = store.NewFileStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	c.Index, err = index.NewManager(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create index manager: %w", err)
	}

	c.Store.OnCreating(func(ctx context.Context, s *store.Session) {
		if _, err := c.Index.Acquire(ctx, s.ID); err != nil {
			c.Logger.Warn("failed to allocate session index", "session", s.ID, "error", err)
		}
	})
	c.Store.OnDeleting(func(ctx context.Context, s *store.Session) {
		if err := c.Index.Release(ctx, s.ID); err != nil {
			c.Logger.Warn("failed to release session index", "session", s.ID, "error", err)
		}
	})

	return c, nil
}

// NewContainerWithoutStore creates a container holding only the config
// manager, for commands that must work before anything is set up.
func NewContainerWithoutStore(dataDir string, log logger.Logger) *Container {
	return &Container{
		DataDir:       dataDir,
		ConfigManager: config.NewManager(dataDir),
		Logger:        log,
	}
}

// ProcessConfig describes the companion launch from the configuration.
func (c *Container) ProcessConfig() native.ProcessConfig {
	return native.ProcessConfig{
		Name:         c.Config.Connector.Name,
		ExtensionID:  c.Config.Extension.ID,
		ManifestDirs: c.Config.Connector.ManifestDirs,
		Command:      c.Config.Connector.Command,
		StopTimeout:  companionStopTimeout,
	}
}

// ProcessOpener starts the companion process on first use.
func (c *Container) ProcessOpener(ctx context.Context) native.Opener {
	cfg := c.ProcessConfig()
	return func() (native.Port, error) {
		port, err := native.StartProcess(ctx, cfg, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start companion %s: %w", cfg.Name, err)
		}
		c.Logger.Info("companion started", "name", cfg.Name, "pid", port.Pid())
		return port, nil
	}
}

// Runtime is one running engine with its companion channel.
type Runtime struct {
	Engine    *engine.Engine
	Connector *native.Connector
	Pending   *pending.Table
}

// NewRuntime wires an engine to host and to a connector using open.
func (c *Container) NewRuntime(host browser.Host, open native.Opener) *Runtime {
	conn := native.NewConnector(open, c.Logger)
	table := pending.New()

	return &Runtime{
		Engine:    engine.New(c.Config, host, c.Store, conn, table, c.Logger),
		Connector: conn,
		Pending:   table,
	}
}

// Close tears down the companion channel.
func (r *Runtime) Close() error {
	return r.Connector.Close()
}
