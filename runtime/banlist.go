package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-hall/domain"
)

// BanRegistry maps session handles to their active ban, at most one per
// session (a new kick overwrites the previous ban). Expired bans are purged
// lazily on lookup; a background sweep may also run, but correctness only
// relies on the lazy path.
type BanRegistry struct {
	mu   sync.Mutex
	bans map[uuid.UUID]domain.Ban
}

func NewBanRegistry() *BanRegistry {
	return &BanRegistry{bans: make(map[uuid.UUID]domain.Ban)}
}

// Ban records a ban for the session, effective at the given instant.
func (b *BanRegistry) Ban(sessionID uuid.UUID, roomID string, duration time.Duration, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bans[sessionID] = domain.Ban{
		SessionID: sessionID,
		RoomID:    roomID,
		Start:     now,
		Duration:  duration,
	}
}

// IsActive reports whether the session is currently banned from the given
// room. An expired ban found during the check is removed so a subsequent
// identical check need not re-derive state. Bans apply only to the room they
// were issued in; MainHall joins must never consult this.
func (b *BanRegistry) IsActive(sessionID uuid.UUID, roomID string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ban, ok := b.bans[sessionID]
	if !ok {
		return false
	}
	if !ban.Active(now) {
		delete(b.bans, sessionID)
		return false
	}
	return ban.RoomID == roomID
}

// Clear removes any ban record for the session unconditionally.
func (b *BanRegistry) Clear(sessionID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bans, sessionID)
}

// Sweep purges every expired ban and returns how many were removed.
func (b *BanRegistry) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, ban := range b.bans {
		if !ban.Active(now) {
			delete(b.bans, id)
			removed++
		}
	}
	return removed
}
