package domain

import (
	"slices"

	"chat-hall/contract"
	"chat-hall/protocol"
)

// Room is one chat room: an id, an optional owner identity, and a member set
// kept as an insertion-ordered identity list in 1:1 correspondence with the
// members' outbound endpoints.
//
// Room does not protect itself; the orchestrator synchronizes every access.
type Room struct {
	id         string
	owner      string
	identities []string
	endpoints  map[string]contract.Endpoint
}

func NewRoom(id string) *Room {
	return &Room{
		id:        id,
		endpoints: make(map[string]contract.Endpoint),
	}
}

func (r *Room) ID() string { return r.id }

// Owner is the identity permitted to delete the room or kick from it.
// Empty for MainHall and for rooms whose owner departed.
func (r *Room) Owner() string { return r.owner }

func (r *Room) SetOwner(owner string) { r.owner = owner }

// AddMember inserts into both member sets. The caller guarantees the
// identity is not already present.
func (r *Room) AddMember(identity string, ep contract.Endpoint) {
	r.identities = append(r.identities, identity)
	r.endpoints[identity] = ep
}

// RemoveMember removes from both sets. Safe to call for an absent identity.
func (r *Room) RemoveMember(identity string) {
	if i := slices.Index(r.identities, identity); i >= 0 {
		r.identities = slices.Delete(r.identities, i, i+1)
	}
	delete(r.endpoints, identity)
}

// RenameMember swaps an identity in place, preserving insertion order.
func (r *Room) RenameMember(former, identity string) {
	if i := slices.Index(r.identities, former); i >= 0 {
		r.identities[i] = identity
	}
	if ep, ok := r.endpoints[former]; ok {
		delete(r.endpoints, former)
		r.endpoints[identity] = ep
	}
}

func (r *Room) HasMember(identity string) bool {
	_, ok := r.endpoints[identity]
	return ok
}

// Members returns a snapshot of the member identities in insertion order.
func (r *Room) Members() []string {
	return slices.Clone(r.identities)
}

func (r *Room) MemberCount() int { return len(r.identities) }

// Broadcast enqueues the frame on every member's ordered outbound queue, in
// member order. Two sequential broadcasts are therefore observed in issue
// order by every recipient.
func (r *Room) Broadcast(f protocol.Frame) {
	for _, identity := range r.identities {
		r.endpoints[identity].Enqueue(f)
	}
}
