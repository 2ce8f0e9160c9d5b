// Package protocol defines the wire format of the chat service: a closed set
// of frame variants, each carried as a JSON object with a "type" discriminator
// and sent length-framed over a byte stream.
package protocol

import (
	"encoding/json"
	"fmt"

	"chat-hall/errors"
)

type Kind string

const (
	KindMessage        Kind = "message"
	KindIdentityChange Kind = "identitychange"
	KindJoin           Kind = "join"
	KindWho            Kind = "who"
	KindList           Kind = "list"
	KindCreateRoom     Kind = "createroom"
	KindDelete         Kind = "delete"
	KindKick           Kind = "kick"
	KindQuit           Kind = "quit"

	KindNewIdentity  Kind = "newidentity"
	KindRoomChange   Kind = "roomchange"
	KindRoomContents Kind = "roomcontents"
	KindRoomList     Kind = "roomlist"
)

// Frame is the closed union of every message exchanged between client and
// server. The unexported method seals the set so that dispatch switches stay
// exhaustive.
type Frame interface {
	Kind() Kind
	sealed()
}

// Message is both a client chat request (Identity empty) and the relayed
// broadcast (Identity filled in by the server).
type Message struct {
	Identity string `json:"identity,omitempty"`
	Content  string `json:"content"`
}

type IdentityChange struct {
	Identity string `json:"identity"`
}

type Join struct {
	RoomID string `json:"roomid"`
}

type Who struct {
	RoomID string `json:"roomid"`
}

type List struct{}

type CreateRoom struct {
	RoomID string `json:"roomid"`
}

type Delete struct {
	RoomID string `json:"roomid"`
}

type Kick struct {
	RoomID   string `json:"roomid"`
	Time     int64  `json:"time"`
	Identity string `json:"identity"`
}

type Quit struct{}

type NewIdentity struct {
	Former   string `json:"former"`
	Identity string `json:"identity"`
}

// RoomChange announces a membership move. An empty RoomID signals a
// departure; a session receiving an empty RoomID with its own identity treats
// it as its shutdown signal.
type RoomChange struct {
	Identity string `json:"identity"`
	Former   string `json:"former"`
	RoomID   string `json:"roomid"`
}

type RoomContents struct {
	RoomID     string   `json:"roomid"`
	Identities []string `json:"identities"`
	Owner      string   `json:"owner"`
}

type RoomCount struct {
	RoomID string `json:"roomid"`
	Count  int    `json:"count"`
}

type RoomList struct {
	Rooms []RoomCount `json:"rooms"`
}

func (Message) Kind() Kind        { return KindMessage }
func (IdentityChange) Kind() Kind { return KindIdentityChange }
func (Join) Kind() Kind           { return KindJoin }
func (Who) Kind() Kind            { return KindWho }
func (List) Kind() Kind           { return KindList }
func (CreateRoom) Kind() Kind     { return KindCreateRoom }
func (Delete) Kind() Kind         { return KindDelete }
func (Kick) Kind() Kind           { return KindKick }
func (Quit) Kind() Kind           { return KindQuit }
func (NewIdentity) Kind() Kind    { return KindNewIdentity }
func (RoomChange) Kind() Kind     { return KindRoomChange }
func (RoomContents) Kind() Kind   { return KindRoomContents }
func (RoomList) Kind() Kind       { return KindRoomList }

func (Message) sealed()        {}
func (IdentityChange) sealed() {}
func (Join) sealed()           {}
func (Who) sealed()            {}
func (List) sealed()           {}
func (CreateRoom) sealed()     {}
func (Delete) sealed()         {}
func (Kick) sealed()           {}
func (Quit) sealed()           {}
func (NewIdentity) sealed()    {}
func (RoomChange) sealed()     {}
func (RoomContents) sealed()   {}
func (RoomList) sealed()       {}

// Encode marshals a frame and splices the "type" discriminator into the
// resulting JSON object.
func Encode(f Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding %s frame: %w", f.Kind(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s frame: %w", f.Kind(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	kind, err := json.Marshal(f.Kind())
	if err != nil {
		return nil, err
	}
	fields["type"] = kind

	return json.Marshal(fields)
}

// Decode parses a JSON record into its frame variant. Unknown discriminators
// and missing ones are rejected rather than silently swallowed.
func Decode(data []byte) (Frame, error) {
	var envelope struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}

	var (
		frame Frame
		err   error
	)
	switch envelope.Type {
	case KindMessage:
		frame, err = decodeAs[Message](data)
	case KindIdentityChange:
		frame, err = decodeAs[IdentityChange](data)
	case KindJoin:
		frame, err = decodeAs[Join](data)
	case KindWho:
		frame, err = decodeAs[Who](data)
	case KindList:
		frame, err = decodeAs[List](data)
	case KindCreateRoom:
		frame, err = decodeAs[CreateRoom](data)
	case KindDelete:
		frame, err = decodeAs[Delete](data)
	case KindKick:
		frame, err = decodeAs[Kick](data)
	case KindQuit:
		frame, err = decodeAs[Quit](data)
	case KindNewIdentity:
		frame, err = decodeAs[NewIdentity](data)
	case KindRoomChange:
		frame, err = decodeAs[RoomChange](data)
	case KindRoomContents:
		frame, err = decodeAs[RoomContents](data)
	case KindRoomList:
		frame, err = decodeAs[RoomList](data)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedFrame, envelope.Type)
	}
	return frame, err
}

func decodeAs[T Frame](data []byte) (Frame, error) {
	var f T
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}
	return f, nil
}
