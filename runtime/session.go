package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-hall/contract"
	"chat-hall/domain"
	"chat-hall/protocol"
)

// State is the lifecycle of one connected session.
type State int

const (
	// Connecting covers the window between accept and the first identity
	// assignment.
	Connecting State = iota
	// Active sessions have an identity and, once the implicit MainHall
	// join lands, exactly one current room.
	Active
	// Closed sessions have been torn down; further requests are ignored.
	Closed
)

// Session is the per-connection protocol state machine. One worker consumes
// its inbound frames strictly in arrival order and mutates the shared state
// through orchestrator operations; a second worker (the endpoint) owns
// outbound delivery so request handling never waits on a socket write.
//
// identity, room and state are guarded by the orchestrator lock.
type Session struct {
	id       uuid.UUID
	identity string
	room     *domain.Room
	state    State
	endpoint contract.Endpoint

	orch     *Orchestrator
	requests chan protocol.Frame
	done     chan struct{}
	closeIn  sync.Once
	log      *slog.Logger
}

func newSession(ep contract.Endpoint, orch *Orchestrator, bufferSize int, log *slog.Logger) *Session {
	return &Session{
		id:       uuid.New(),
		state:    Connecting,
		endpoint: ep,
		orch:     orch,
		requests: make(chan protocol.Frame, bufferSize),
		done:     make(chan struct{}),
		log:      log,
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

// Push hands a decoded inbound frame to the session worker. It blocks when
// the queue is full (backpressure on the reader) but never beyond the
// worker's lifetime.
func (s *Session) Push(f protocol.Frame) {
	select {
	case s.requests <- f:
	case <-s.done:
	}
}

// Disconnect signals that the transport is gone. The worker drains what was
// already queued and then runs the same teardown as an explicit quit.
func (s *Session) Disconnect() {
	s.closeIn.Do(func() { close(s.requests) })
}

// Run consumes the session's inbound queue until a quit request, a
// disconnect, or server shutdown, then tears the session down exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.orch.Quit(s)
			return nil
		case f, ok := <-s.requests:
			if !ok {
				s.orch.Quit(s)
				return nil
			}
			if quit := s.handle(f); quit {
				s.orch.Quit(s)
				return nil
			}
		}
	}
}

// handle dispatches one request. Every failure here is recovered locally:
// the session replies with a no-change frame or stays silent, and remains
// active.
func (s *Session) handle(f protocol.Frame) bool {
	var err error
	switch req := f.(type) {
	case protocol.Message:
		err = s.orch.Say(s, req.Content)
	case protocol.IdentityChange:
		err = s.orch.Rename(s, req.Identity)
	case protocol.Join:
		err = s.orch.Join(s, req.RoomID)
	case protocol.Who:
		err = s.orch.Who(s, req.RoomID)
	case protocol.List:
		s.orch.ListRooms(s)
	case protocol.CreateRoom:
		err = s.orch.CreateRoom(s, req.RoomID)
	case protocol.Delete:
		err = s.orch.DeleteRoom(s, req.RoomID)
	case protocol.Kick:
		err = s.orch.Kick(s, req.RoomID, req.Identity, time.Duration(req.Time)*time.Second)
	case protocol.Quit:
		return true
	case protocol.NewIdentity, protocol.RoomChange, protocol.RoomContents, protocol.RoomList:
		s.log.Warn("Ignoring reply frame sent by a client", "kind", f.Kind(), "session", s.id)
	}
	if err != nil {
		s.log.Debug("Request ignored", "kind", f.Kind(), "session", s.id, "reason", err)
	}
	return false
}
