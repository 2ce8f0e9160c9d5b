package runtime

import (
	"github.com/samber/lo"

	"chat-hall/domain"
	"chat-hall/errors"
	"chat-hall/protocol"
)

// RoomDirectory owns the room collection, keyed by id and enumerable in
// creation order with MainHall first. Like domain.Room it does not protect
// itself; the orchestrator synchronizes every access.
type RoomDirectory struct {
	order []*domain.Room
	rooms map[string]*domain.Room
}

func NewRoomDirectory() *RoomDirectory {
	d := &RoomDirectory{rooms: make(map[string]*domain.Room)}
	mainHall := domain.NewRoom(domain.MainHall)
	d.order = append(d.order, mainHall)
	d.rooms[domain.MainHall] = mainHall
	return d
}

// Create adds a room owned by the given identity. It fails when the id is
// already taken, MainHall included.
func (d *RoomDirectory) Create(roomID, owner string) (*domain.Room, error) {
	if _, exists := d.rooms[roomID]; exists {
		return nil, errors.ErrRoomNameInUse
	}
	room := domain.NewRoom(roomID)
	room.SetOwner(owner)
	d.order = append(d.order, room)
	d.rooms[roomID] = room
	return room, nil
}

func (d *RoomDirectory) Get(roomID string) (*domain.Room, bool) {
	room, ok := d.rooms[roomID]
	return room, ok
}

func (d *RoomDirectory) MainHall() *domain.Room {
	return d.rooms[domain.MainHall]
}

// Delete removes the room. Callers never invoke it for MainHall; request
// routing excludes that structurally. Absent ids are a no-op so that a room
// already reaped by an owner departure can be deleted again safely.
func (d *RoomDirectory) Delete(roomID string) {
	if _, ok := d.rooms[roomID]; !ok {
		return
	}
	delete(d.rooms, roomID)
	d.order = lo.Reject(d.order, func(r *domain.Room, _ int) bool {
		return r.ID() == roomID
	})
}

// Rooms returns the rooms in creation order, MainHall first.
func (d *RoomDirectory) Rooms() []*domain.Room {
	return d.order
}

// ListWithCounts snapshots every room id with its member count, in creation
// order.
func (d *RoomDirectory) ListWithCounts() []protocol.RoomCount {
	return lo.Map(d.order, func(r *domain.Room, _ int) protocol.RoomCount {
		return protocol.RoomCount{RoomID: r.ID(), Count: r.MemberCount()}
	})
}
