// Package transport turns TCP connections into sessions: a reader goroutine
// decodes length-framed requests, a writer goroutine drains the session's
// ordered outbound queue.
package transport

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"sync"

	"chat-hall/contract"
	"chat-hall/errors"
	"chat-hall/protocol"
)

var _ contract.Endpoint = (*SocketEndpoint)(nil)

// SocketEndpoint is the outbound half of one connection. A single worker
// writes the queued frames to the socket, so broadcasts enqueued in order
// are delivered in order, and no broadcaster ever blocks on a peer's socket.
type SocketEndpoint struct {
	log     *slog.Logger
	conn    net.Conn
	frames  chan protocol.Frame
	closing chan struct{}
	once    sync.Once
}

func NewSocketEndpoint(conn net.Conn, bufferSize int, log *slog.Logger) *SocketEndpoint {
	return &SocketEndpoint{
		log:     log,
		conn:    conn,
		frames:  make(chan protocol.Frame, bufferSize),
		closing: make(chan struct{}),
	}
}

// Enqueue appends a frame to the outbound queue without blocking. A full
// queue means the peer stopped draining its socket; the frame is dropped and
// logged rather than stalling the sender.
func (e *SocketEndpoint) Enqueue(f protocol.Frame) {
	select {
	case e.frames <- f:
	default:
		e.log.Warn("Outbound queue full, dropping frame",
			"kind", f.Kind(), "remote", e.conn.RemoteAddr())
	}
}

// Shutdown asks the writer to deliver what was already enqueued and then
// close the connection. Safe to call more than once.
func (e *SocketEndpoint) Shutdown() {
	e.once.Do(func() { close(e.closing) })
}

// Run drains the outbound queue onto the socket until shutdown, server stop,
// or a write failure.
func (e *SocketEndpoint) Run(ctx context.Context) error {
	defer e.conn.Close()
	w := protocol.NewFrameWriter(e.conn)

	for {
		select {
		case f := <-e.frames:
			if err := e.write(w, f); err != nil {
				e.log.Debug("Dropping connection on write failure",
					"remote", e.conn.RemoteAddr(), "error", err)
				return nil
			}
		case <-e.closing:
			e.drain(w)
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// write sends one frame. A frame too large for the wire costs that frame
// only; the connection stays up for the next one.
func (e *SocketEndpoint) write(w *protocol.FrameWriter, f protocol.Frame) error {
	err := w.Write(f)
	if stderrors.Is(err, errors.ErrFrameTooLarge) {
		e.log.Warn("Dropping oversized frame",
			"kind", f.Kind(), "remote", e.conn.RemoteAddr(), "error", err)
		return nil
	}
	return err
}

// drain flushes the frames that were enqueued before the shutdown signal,
// the final departure notice included.
func (e *SocketEndpoint) drain(w *protocol.FrameWriter) {
	for {
		select {
		case f := <-e.frames:
			if err := e.write(w, f); err != nil {
				return
			}
		default:
			return
		}
	}
}
