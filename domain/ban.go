package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ban is a time-bounded suppression of one session's ability to join one
// non-MainHall room. It is keyed by the session handle, not the display
// name: a banned user keeps the ban across renames, while a reconnecting
// guest that recycles the same name does not inherit it.
type Ban struct {
	SessionID uuid.UUID
	RoomID    string
	Start     time.Time
	Duration  time.Duration
}

// Active reports whether the ban still applies at the given instant.
func (b Ban) Active(now time.Time) bool {
	return now.Before(b.Start.Add(b.Duration))
}
