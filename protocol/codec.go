package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"chat-hall/errors"
)

// Frames are prefixed with a big-endian uint16 payload length, so a single
// record can carry at most 64 KiB of JSON.
const maxFrameSize = 1<<16 - 1

// MaxContentSize bounds inbound chat content so that the relayed broadcast,
// with the sender identity and the JSON envelope added, still fits one frame.
const MaxContentSize = maxFrameSize - 256

// FrameReader decodes length-prefixed frames from a byte stream.
type FrameReader struct {
	r io.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Read blocks until a full frame is available and decodes it. It returns
// io.EOF (possibly wrapped) once the underlying stream is closed.
func (fr *FrameReader) Read() (Frame, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(fr.r, prefix[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint16(prefix[:])

	payload := make([]byte, size)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return nil, err
	}
	return Decode(payload)
}

// FrameWriter encodes frames onto a byte stream with a length prefix.
type FrameWriter struct {
	w io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) Write(f Frame) error {
	payload, err := Encode(f)
	if err != nil {
		return err
	}
	if len(payload) > maxFrameSize {
		return fmt.Errorf("%w: %s frame is %d bytes", errors.ErrFrameTooLarge, f.Kind(), len(payload))
	}

	buf := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(buf[:2], uint16(len(payload)))
	copy(buf[2:], payload)

	_, err = fw.w.Write(buf)
	return err
}
