// Package runtime is the coordination engine of the chat service: it owns the
// session registry, the room directory, the ban registry and the guest id
// pool, and exposes the atomic operations sessions invoke on them.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-hall/contract"
	"chat-hall/domain"
	"chat-hall/errors"
	"chat-hall/protocol"
)

// Orchestrator serializes every mutation of the shared state. One mutex
// covers rooms, sessions and ownership so that multi-registry sequences
// (join, rename, delete, kick) are atomic for any observer; the guest pool
// and the ban registry are self-locking leaves. No I/O happens under the
// lock: outbound delivery is a non-blocking enqueue on per-session queues.
type Orchestrator struct {
	mu        sync.Mutex
	log       *slog.Logger
	directory *RoomDirectory
	registry  *SessionRegistry
	bans      *BanRegistry

	inboundBuffer int
	clock         func() time.Time
}

func NewOrchestrator(log *slog.Logger, inboundBuffer int) *Orchestrator {
	return &Orchestrator{
		log:           log,
		directory:     NewRoomDirectory(),
		registry:      NewSessionRegistry(),
		bans:          NewBanRegistry(),
		inboundBuffer: inboundBuffer,
		clock:         time.Now,
	}
}

// Bans exposes the ban registry to the background sweeper.
func (o *Orchestrator) Bans() *BanRegistry { return o.bans }

// Connect registers a fresh connection under the next guest identity and
// returns its session, still in the Connecting state.
func (o *Orchestrator) Connect(ep contract.Endpoint) *Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := newSession(ep, o, o.inboundBuffer, o.log)
	o.registry.RegisterGuest(s)
	o.log.Info("Session connected", "session", s.id, "identity", s.identity)
	return s
}

// Rename handles an identitychange request. An empty requested identity is
// the bootstrap step: it activates the session and replies with the guest
// identity allocated at connection time. Otherwise the rename succeeds only
// if the new identity is well formed and collides with no live session, in
// which case the registry, the current room's member set and every owned
// room are updated together and all sessions are notified.
func (o *Orchestrator) Rename(s *Session, requested string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state == Closed {
		return nil
	}

	former := s.identity
	if requested == "" {
		if s.state == Connecting {
			s.state = Active
			former = ""
		}
		s.endpoint.Enqueue(protocol.NewIdentity{Former: former, Identity: s.identity})
		return nil
	}
	// A chosen identity is only accepted once the bootstrap exchange has
	// activated the session.
	if s.state != Active {
		return errors.ErrNotConnected
	}

	if !domain.ValidIdentity(requested) {
		s.endpoint.Enqueue(protocol.NewIdentity{Former: former, Identity: former})
		return errors.ErrInvalidIdentityFormat
	}
	if o.registry.IdentityInUse(requested) {
		s.endpoint.Enqueue(protocol.NewIdentity{Former: former, Identity: former})
		return errors.ErrIdentityInUse
	}

	o.registry.RenameIdentity(s, requested)
	if s.room != nil {
		s.room.RenameMember(former, requested)
	}
	// Ownership follows the rename transactionally, in every room.
	for _, room := range o.directory.Rooms() {
		if room.Owner() == former {
			room.SetOwner(requested)
		}
	}

	o.registry.Announce(protocol.NewIdentity{Former: former, Identity: requested})
	o.log.Info(fmt.Sprintf("%s is now %s", former, requested))
	return nil
}

// Join moves the session into the target room: it leaves the previous room,
// reaps that room if the leaver owned it and emptied it, joins the target
// and broadcasts the change to both rooms. A join into a room the session is
// already in is a no-op; an active ban silently suppresses the request.
// MainHall joins never consult the ban registry and additionally reply with
// the hall's contents.
func (o *Orchestrator) Join(s *Session, roomID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state != Active {
		return errors.ErrNotConnected
	}
	room, ok := o.directory.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	if room.HasMember(s.identity) {
		return nil
	}
	if roomID != domain.MainHall && o.bans.IsActive(s.id, roomID, o.clock()) {
		return errors.ErrActiveBan
	}

	o.moveLocked(s, room)
	if roomID == domain.MainHall {
		s.endpoint.Enqueue(protocol.RoomContents{
			RoomID:     domain.MainHall,
			Identities: room.Members(),
			Owner:      "",
		})
	}
	return nil
}

// Say relays a chat message, tagged with the sender's identity, to every
// member of the sender's current room.
func (o *Orchestrator) Say(s *Session, content string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state != Active || s.room == nil {
		return errors.ErrNotConnected
	}
	// The relayed frame carries the sender identity on top of the content;
	// cap the content so the broadcast always fits on the wire.
	if len(content) > protocol.MaxContentSize {
		return errors.ErrMessageTooLong
	}
	s.room.Broadcast(protocol.Message{Identity: s.identity, Content: content})
	return nil
}

// CreateRoom creates a room owned by the requesting session. Whether or not
// creation happened, the requester receives the current room list.
func (o *Orchestrator) CreateRoom(s *Session, roomID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state != Active {
		return errors.ErrNotConnected
	}

	var err error
	if !domain.ValidRoomName(roomID) {
		err = errors.ErrInvalidRoomName
	} else if _, created := o.directory.Create(roomID, s.identity); created != nil {
		err = created
	} else {
		o.log.Info("Room created", "room", roomID, "owner", s.identity)
	}

	s.endpoint.Enqueue(protocol.RoomList{Rooms: o.directory.ListWithCounts()})
	return err
}

// DeleteRoom deletes a room on behalf of its owner: every member is moved to
// MainHall with a room-change broadcast each, the room is removed, and the
// requester alone receives the updated room list. Requests on non-owned or
// unknown rooms change nothing and produce no reply.
func (o *Orchestrator) DeleteRoom(s *Session, roomID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state != Active {
		return errors.ErrNotConnected
	}
	room, ok := o.directory.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	if roomID == domain.MainHall || room.Owner() != s.identity {
		return errors.ErrUnauthorized
	}

	mainHall := o.directory.MainHall()
	for _, member := range room.Members() {
		ms, found := o.registry.Lookup(member)
		if !found {
			continue
		}
		o.moveLocked(ms, mainHall)
	}

	o.directory.Delete(roomID)
	s.endpoint.Enqueue(protocol.RoomList{Rooms: o.directory.ListWithCounts()})
	o.log.Info("Room deleted", "room", roomID, "owner", s.identity)
	return nil
}

// Who replies with a room's members and owner. MainHall reports an empty
// owner; unknown rooms get no reply.
func (o *Orchestrator) Who(s *Session, roomID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	room, ok := o.directory.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	s.endpoint.Enqueue(protocol.RoomContents{
		RoomID:     room.ID(),
		Identities: room.Members(),
		Owner:      room.Owner(),
	})
	return nil
}

// ListRooms replies with every room id and its member count.
func (o *Orchestrator) ListRooms(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s.endpoint.Enqueue(protocol.RoomList{Rooms: o.directory.ListWithCounts()})
}

// Kick records a ban against the target session, scoped to the issuing room
// and overwriting any prior ban, then forces the target into MainHall.
// Only the owner of a non-MainHall room may kick; anything else is silently
// ignored, as is an unknown target.
func (o *Orchestrator) Kick(s *Session, roomID, target string, duration time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state != Active {
		return errors.ErrNotConnected
	}
	room, ok := o.directory.Get(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}
	if roomID == domain.MainHall || room.Owner() != s.identity {
		return errors.ErrUnauthorized
	}
	ts, found := o.registry.Lookup(target)
	if !found {
		return errors.ErrNotConnected
	}

	o.bans.Ban(ts.id, roomID, duration, o.clock())
	mainHall := o.directory.MainHall()
	if !mainHall.HasMember(ts.identity) {
		o.moveLocked(ts, mainHall)
	}
	o.log.Info("Session kicked", "room", roomID, "target", target, "duration", duration)
	return nil
}

// Quit runs the unconditional teardown shared by explicit quit requests and
// abrupt disconnects: leave the current room with a departure broadcast,
// vacate owned rooms (deleting the emptied ones), recycle the guest number,
// clear any ban, and hand the session its shutdown signal. Idempotent.
func (o *Orchestrator) Quit(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.state == Closed {
		return
	}
	s.state = Closed

	if s.room != nil {
		former := s.room.ID()
		s.room.RemoveMember(s.identity)
		s.room.Broadcast(protocol.RoomChange{Identity: s.identity, Former: former, RoomID: ""})
		s.room = nil
	}

	// Owned rooms lose their owner; the ones left empty are reaped so no
	// unowned, unreachable room lingers.
	for _, room := range o.directory.Rooms() {
		if room.Owner() == s.identity {
			room.SetOwner("")
			if room.ID() != domain.MainHall && room.MemberCount() == 0 {
				o.directory.Delete(room.ID())
			}
		}
	}

	o.bans.Clear(s.id)
	o.registry.Unregister(s)

	// Empty former and roomid with the session's own identity is the
	// client's cue to shut down.
	s.endpoint.Enqueue(protocol.RoomChange{Identity: s.identity, Former: "", RoomID: ""})
	s.endpoint.Shutdown()
	o.log.Info("Session disconnected", "session", s.id, "identity", s.identity)
}

// moveLocked transfers the session between rooms and broadcasts the change
// to the remaining members of the former room and to the target room (the
// mover included). The former room is reaped when its departing owner left
// it empty. Caller holds o.mu.
func (o *Orchestrator) moveLocked(s *Session, target *domain.Room) {
	former := ""
	previous := s.room
	if previous != nil {
		former = previous.ID()
		previous.RemoveMember(s.identity)
		if former != domain.MainHall && previous.Owner() == s.identity && previous.MemberCount() == 0 {
			o.directory.Delete(former)
			o.log.Info("Room reaped after owner departure", "room", former)
		}
	}

	change := protocol.RoomChange{Identity: s.identity, Former: former, RoomID: target.ID()}
	if previous != nil {
		previous.Broadcast(change)
	}

	target.AddMember(s.identity, s.endpoint)
	s.room = target
	target.Broadcast(change)
}

// Snapshot helpers used by tests and logging; they take the lock so callers
// observe a consistent state.

func (o *Orchestrator) Identity(s *Session) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return s.identity
}

func (o *Orchestrator) CurrentRoom(s *Session) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s.room == nil {
		return ""
	}
	return s.room.ID()
}
