package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"chat-hall/contract"
	"chat-hall/errors"
	"chat-hall/protocol"
	"chat-hall/runtime"
)

var _ contract.Worker = (*Server)(nil)

// Server accepts TCP connections and wires each one into the engine: one
// endpoint writer, one session worker, and a reader loop feeding decoded
// frames to the session in arrival order.
//
// The listener is created by the caller so a bind failure stays fatal at
// startup instead of being retried under supervision.
type Server struct {
	log            *slog.Logger
	orchestrator   *runtime.Orchestrator
	listener       net.Listener
	outboundBuffer int
	wg             sync.WaitGroup
}

func NewServer(log *slog.Logger, orchestrator *runtime.Orchestrator, listener net.Listener, outboundBuffer int) *Server {
	return &Server{
		log:            log,
		orchestrator:   orchestrator,
		listener:       listener,
		outboundBuffer: outboundBuffer,
	}
}

// Run accepts connections until the context is canceled, then waits for
// every connection handler to finish.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("Server is listening", "address", s.listener.Addr())

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				s.log.Info("Server stopped")
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.log.Info("Client connected", "remote", conn.RemoteAddr())

		s.wg.Add(1)
		go s.handle(ctx, conn)
	}
}

// handle owns one connection for its whole life. The reader runs in this
// goroutine; the endpoint writer and the session worker get their own.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	endpoint := NewSocketEndpoint(conn, s.outboundBuffer, s.log)
	session := s.orchestrator.Connect(endpoint)

	go func() {
		_ = endpoint.Run(ctx)
	}()
	go func() {
		_ = session.Run(ctx)
	}()

	reader := protocol.NewFrameReader(conn)
	for {
		frame, err := reader.Read()
		if err != nil {
			// A malformed record costs the request, not the session.
			if stderrors.Is(err, errors.ErrMalformedFrame) {
				s.log.Warn("Ignoring malformed frame", "remote", conn.RemoteAddr(), "error", err)
				continue
			}
			break
		}
		session.Push(frame)
	}

	// EOF and socket errors run the same teardown as an explicit quit.
	session.Disconnect()
	s.log.Info("Client terminated connection", "remote", conn.RemoteAddr())
}
