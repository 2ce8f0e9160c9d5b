package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-hall/errors"
)

func TestEncode_SplicesTypeDiscriminator(t *testing.T) {
	req := require.New(t)

	// Given a kick request
	raw, err := Encode(Kick{RoomID: "lobby2", Time: 30, Identity: "bob"})
	req.NoError(err)

	// Then the JSON object carries the discriminator next to the payload fields
	var fields map[string]any
	req.NoError(json.Unmarshal(raw, &fields))
	req.Equal("kick", fields["type"])
	req.Equal("lobby2", fields["roomid"])
	req.Equal(float64(30), fields["time"])
	req.Equal("bob", fields["identity"])
}

func TestEncode_EmptyFrameStillCarriesType(t *testing.T) {
	req := require.New(t)

	// Given a frame with no payload fields
	raw, err := Encode(Quit{})
	req.NoError(err)

	// Then the record is still a valid object with its discriminator
	req.JSONEq(`{"type":"quit"}`, string(raw))
}

func TestFrameReaderWriter_RoundTrip(t *testing.T) {
	req := require.New(t)

	// Given a stream carrying several frames back to back
	frames := []Frame{
		IdentityChange{Identity: "bob"},
		Message{Identity: "guest1", Content: "hello"},
		RoomChange{Identity: "bob", Former: "MainHall", RoomID: "lobby2"},
		RoomContents{RoomID: "lobby2", Identities: []string{"bob", "guest2"}, Owner: "bob"},
		RoomList{Rooms: []RoomCount{{RoomID: "MainHall", Count: 2}, {RoomID: "lobby2", Count: 1}}},
		Quit{},
	}

	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	for _, f := range frames {
		req.NoError(w.Write(f))
	}

	// When reading the stream back
	r := NewFrameReader(&buf)
	for _, want := range frames {
		got, err := r.Read()
		req.NoError(err)
		req.Equal(want, got)
	}

	// Then the stream is exhausted exactly at the last frame
	_, err := r.Read()
	req.ErrorIs(err, io.EOF)
}

func TestFrameWriter_RejectsOversizedFrameWithoutWriting(t *testing.T) {
	req := require.New(t)

	// Given content that overflows the wire limit once relayed
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	oversized := Message{Identity: "bob", Content: strings.Repeat("a", MaxContentSize+512)}

	// Then the write fails with the size sentinel and emits nothing
	err := w.Write(oversized)
	req.ErrorIs(err, errors.ErrFrameTooLarge)
	req.Zero(buf.Len())

	// And a frame at the content cap still fits
	req.NoError(w.Write(Message{Identity: "bob", Content: strings.Repeat("a", MaxContentSize)}))
}

func TestFrameReader_TruncatedPayload(t *testing.T) {
	req := require.New(t)

	// Given a prefix promising more bytes than the stream holds
	var buf bytes.Buffer
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], 100)
	buf.Write(prefix[:])
	buf.WriteString(`{"type":"quit"}`)

	// Then the reader surfaces the truncation instead of a partial frame
	_, err := NewFrameReader(&buf).Read()
	req.ErrorIs(err, io.ErrUnexpectedEOF)
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{"type":"shutdown"}`))
	req.ErrorIs(err, errors.ErrMalformedFrame)
}

func TestDecode_RejectsMissingType(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{"content":"hello"}`))
	req.ErrorIs(err, errors.ErrMalformedFrame)
}

func TestDecode_RejectsNonJSON(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte("hello there"))
	req.ErrorIs(err, errors.ErrMalformedFrame)
}
