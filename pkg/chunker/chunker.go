// Package chunker splits a file into fixed-size blocks for the manifest
// builder, in both the forward order a reader naturally produces and the
// reverse order the builder consumes them in.
package chunker

import (
	"fmt"
	"io"
	"os"
)

// Chunk is a single block of file data at a known offset.
type Chunk struct {
	Index  int
	Offset int64
	Data   []byte
}

// File splits the file at path into chunks of blockSize bytes, returned in
// forward (offset-ascending) order. The final chunk may be shorter than
// blockSize.
func File(path string, blockSize uint32) ([]Chunk, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("chunker: block size cannot be zero")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chunker: open %s: %w", path, err)
	}
	defer f.Close()

	return Reader(f, blockSize)
}

// Reader splits r into chunks of blockSize bytes, in forward order.
func Reader(r io.Reader, blockSize uint32) ([]Chunk, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("chunker: block size cannot be zero")
	}

	var chunks []Chunk
	buf := make([]byte, blockSize)
	var offset int64

	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			chunks = append(chunks, Chunk{Index: len(chunks), Offset: offset, Data: data})
			offset += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chunker: read at offset %d: %w", offset, err)
		}
	}

	return chunks, nil
}

// Reverse returns chunks in reverse (last-chunk-first) order, the order the
// manifest builder consumes them in per the skewed tree's prepend-only
// construction.
func Reverse(chunks []Chunk) []Chunk {
	reversed := make([]Chunk, len(chunks))
	for i, c := range chunks {
		reversed[len(chunks)-1-i] = c
	}
	return reversed
}

// Reassemble concatenates chunks in slice order; for the forward-ordered
// output of File/Reader that is offset order, making it their inverse.
func Reassemble(chunks []Chunk) []byte {
	var total int
	for _, c := range chunks {
		total += len(c.Data)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c.Data...)
	}
	return out
}
