package runtime

import (
	"github.com/google/uuid"

	"chat-hall/domain"
	"chat-hall/protocol"
)

// SessionRegistry tracks every live session and its identity, and can
// dispatch a frame to all of them. Identity bookkeeping (guest numbering
// included) lives here; the orchestrator synchronizes every access, so the
// registry itself holds no lock.
type SessionRegistry struct {
	pool       *GuestIDPool
	sessions   map[uuid.UUID]*Session
	identities map[string]*Session
	order      []*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		pool:       NewGuestIDPool(),
		sessions:   make(map[uuid.UUID]*Session),
		identities: make(map[string]*Session),
	}
}

// RegisterGuest allocates the lowest free guest number, forms the default
// identity and stores the new session under it. A rename may have claimed a
// guest name the pool never issued; such numbers are skipped here and come
// back through releaseGuestNumber when the holder gives the identity up.
func (r *SessionRegistry) RegisterGuest(s *Session) {
	identity := domain.GuestName(r.pool.Allocate())
	for r.IdentityInUse(identity) {
		identity = domain.GuestName(r.pool.Allocate())
	}
	s.identity = identity
	r.sessions[s.id] = s
	r.identities[s.identity] = s
	r.order = append(r.order, s)
}

// IdentityInUse reports a case-sensitive full-string collision with any live
// session.
func (r *SessionRegistry) IdentityInUse(identity string) bool {
	_, ok := r.identities[identity]
	return ok
}

func (r *SessionRegistry) Lookup(identity string) (*Session, bool) {
	s, ok := r.identities[identity]
	return s, ok
}

// RenameIdentity rebinds the session to its new identity and recycles the
// numeric suffix when the former identity was a default guest name. The
// caller has already checked the new identity for collisions.
func (r *SessionRegistry) RenameIdentity(s *Session, identity string) {
	r.releaseGuestNumber(s.identity)
	delete(r.identities, s.identity)
	s.identity = identity
	r.identities[identity] = s
}

// Unregister removes the session and reclaims its guest number if the
// identity still matches the default pattern.
func (r *SessionRegistry) Unregister(s *Session) {
	if _, ok := r.sessions[s.id]; !ok {
		return
	}
	r.releaseGuestNumber(s.identity)
	delete(r.sessions, s.id)
	delete(r.identities, s.identity)
	for i, known := range r.order {
		if known.id == s.id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Announce delivers a frame to every live session, in registration order.
func (r *SessionRegistry) Announce(f protocol.Frame) {
	for _, s := range r.order {
		s.endpoint.Enqueue(f)
	}
}

func (r *SessionRegistry) Count() int {
	return len(r.order)
}

func (r *SessionRegistry) releaseGuestNumber(identity string) {
	if n, ok := domain.GuestNumber(identity); ok {
		r.pool.Reclaim(n)
	}
}
