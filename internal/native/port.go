// Package native talks to the companion process over the browser
// native-messaging wire format: each message is a 32-bit length in native
// (little-endian) byte order followed by that many bytes of UTF-8 JSON.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
)

// MaxMessageSize bounds a single inbound message, matching the browser limit
// for host-to-extension messages.
const MaxMessageSize = 1 << 20

// ErrMessageTooLarge is returned when an inbound frame exceeds
// MaxMessageSize. Outbound frames are not capped here.
var ErrMessageTooLarge = errors.New("native message too large")

// ErrPortClosed is returned by Send after Close.
var ErrPortClosed = errors.New("port closed")

// Port is one end of a framed message channel.
type Port interface {
	// Send writes one message.
	Send(payload []byte) error
	// Receive blocks for the next message; io.EOF means the peer went away.
	Receive() ([]byte, error)
	// Close tears the channel down.
	Close() error
}

// WriteFrame writes a length-prefixed frame. Only the 32-bit length header
// bounds its size.
func WriteFrame(w io.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("frame of %d bytes does not fit a 32-bit length", len(payload))
	}

	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame. A clean end of stream before a
// header yields io.EOF; a stream cut inside a frame yields
// io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.LittleEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// StreamPort frames messages over a reader and a writer.
type StreamPort struct {
	r       io.Reader
	w       io.Writer
	closers []io.Closer

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// NewStreamPort creates a port reading from r and writing to w. Closers are
// closed in order by Close.
func NewStreamPort(r io.Reader, w io.Writer, closers ...io.Closer) *StreamPort {
	return &StreamPort{r: r, w: w, closers: closers, closed: make(chan struct{})}
}

// Send implements Port.
func (p *StreamPort) Send(payload []byte) error {
	select {
	case <-p.closed:
		return ErrPortClosed
	default:
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return WriteFrame(p.w, payload)
}

// Receive implements Port.
func (p *StreamPort) Receive() ([]byte, error) {
	return ReadFrame(p.r)
}

// Close implements Port.
func (p *StreamPort) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
		for _, c := range p.closers {
			if err := c.Close(); err != nil && p.closeErr == nil {
				p.closeErr = err
			}
		}
	})
	return p.closeErr
}

// Pipe returns two connected in-process ports.
func Pipe() (*StreamPort, *StreamPort) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	a := NewStreamPort(ar, aw, aw, ar)
	b := NewStreamPort(br, bw, bw, br)
	return a, b
}
