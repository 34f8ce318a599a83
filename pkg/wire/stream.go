package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame so a malformed or hostile peer can't
// force an unbounded allocation from the length prefix alone.
const maxFrameSize = 64 << 20

// WriteFrame writes f to w as a 4-byte big-endian length prefix followed by
// its canonical CBOR encoding.
func WriteFrame(w io.Writer, f *Frame) error {
	body, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("wire: marshal frame: %w", err)
	}
	if len(body) > maxFrameSize {
		return fmt.Errorf("wire: frame of %d bytes exceeds maximum of %d", len(body), maxFrameSize)
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and decodes it.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("wire: frame of %d bytes exceeds maximum of %d", size, maxFrameSize)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("wire: read frame body: %w", err)
	}
	return Unmarshal(body)
}
