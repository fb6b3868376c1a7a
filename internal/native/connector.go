package native

import (
	"errors"
	"io"
	"sync"

	"github.com/aki/amber/internal/core/logger"
	"github.com/aki/amber/internal/protocol"
)

// Opener creates the port on first use.
type Opener func() (Port, error)

// Handler receives decoded inbound messages.
type Handler func(protocol.Message)

// Connector owns the single channel to the companion.
//
// The port is opened on first use and kept for the life of the process. It
// is never reopened: once opening fails or the port breaks, sends are logged
// and dropped.
type Connector struct {
	open Opener
	log  logger.Logger

	once    sync.Once
	port    Port
	openErr error

	mu      sync.RWMutex
	handler Handler
	broken  error

	done chan struct{}
}

// NewConnector creates a connector; nothing is opened yet.
func NewConnector(open Opener, log logger.Logger) *Connector {
	return &Connector{
		open: open,
		log:  log.WithGroup("native"),
		done: make(chan struct{}),
	}
}

// OnMessage sets the handler for inbound messages, replacing any previous one.
func (c *Connector) OnMessage(fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

// Port returns the channel, opening it on first call. Opening starts the
// reader and then sends the empty handshake.
func (c *Connector) Port() (Port, error) {
	c.once.Do(func() {
		port, err := c.open()
		if err != nil {
			c.openErr = err
			c.markBroken(err)
			close(c.done)
			c.log.Error("failed to open companion channel", "error", err)
			return
		}
		c.port = port

		go c.read(port)

		if err := port.Send(protocol.Handshake()); err != nil {
			c.markBroken(err)
			c.log.Error("failed to send handshake", "error", err)
			return
		}
		c.log.Debug("handshake sent")
	})
	return c.port, c.openErr
}

// Send encodes and transmits a message. Failures are logged, not returned.
func (c *Connector) Send(m protocol.Message) {
	port, err := c.Port()
	if err != nil {
		c.log.Warn("dropping message, no companion channel", "method", m.Kind(), "id", m.MessageID())
		return
	}

	if broken := c.brokenErr(); broken != nil {
		c.log.Warn("dropping message, companion channel broken", "method", m.Kind(), "id", m.MessageID(), "error", broken)
		return
	}

	data, err := protocol.Encode(m)
	if err != nil {
		c.log.Error("failed to encode message", "method", m.Kind(), "error", err)
		return
	}

	if err := port.Send(data); err != nil {
		c.markBroken(err)
		c.log.Error("failed to send message", "method", m.Kind(), "error", err)
		return
	}
	c.log.Debug("sent", "method", m.Kind(), "id", m.MessageID())
}

func (c *Connector) read(port Port) {
	defer close(c.done)

	for {
		data, err := port.Receive()
		if err != nil {
			c.markBroken(err)
			if errors.Is(err, io.EOF) {
				c.log.Info("companion closed the channel")
			} else {
				c.log.Error("failed to read from companion", "error", err)
			}
			return
		}

		m, err := protocol.Decode(data)
		if err != nil {
			c.log.Debug("dropping inbound message", "error", err)
			continue
		}

		c.mu.RLock()
		handler := c.handler
		c.mu.RUnlock()

		if handler == nil {
			c.log.Debug("no handler for inbound message", "method", m.Kind())
			continue
		}
		handler(m)
	}
}

func (c *Connector) markBroken(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken == nil {
		c.broken = err
	}
}

func (c *Connector) brokenErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.broken
}

// Done is closed once the reader has stopped, either because the companion
// went away or because the channel could not be opened.
func (c *Connector) Done() <-chan struct{} {
	return c.done
}

// Close tears the channel down and waits for the reader to stop. Closing a
// connector that never opened is a no-op.
func (c *Connector) Close() error {
	c.once.Do(func() {
		c.openErr = ErrPortClosed
		close(c.done)
	})
	if c.port == nil {
		return nil
	}

	c.markBroken(ErrPortClosed)
	err := c.port.Close()
	<-c.done
	return err
}
