package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrInvalidIdentityFormat = fmt.Errorf("identity must be 3-16 alphanumeric characters and not start with a digit")
	ErrInvalidRoomName       = fmt.Errorf("room name must be 3-32 alphanumeric characters and not start with a digit")
	ErrIdentityInUse         = fmt.Errorf("identity already in use")
	ErrRoomNameInUse         = fmt.Errorf("room name already in use")
	ErrRoomNotFound          = fmt.Errorf("room not found")
	ErrUnauthorized          = fmt.Errorf("operation reserved to the room owner")
	ErrActiveBan             = fmt.Errorf("session is banned from this room")
	ErrMalformedFrame        = fmt.Errorf("malformed frame")
	ErrFrameTooLarge         = fmt.Errorf("frame exceeds the wire size limit")
	ErrMessageTooLong        = fmt.Errorf("message content too long to relay")
	ErrNotConnected          = fmt.Errorf("session has no current room")
)
