// Package builder implements the skewed manifest builder: it consumes a
// file's chunks in reverse order and produces a left-leaning tree of hash
// groups, storing every content object and interior manifest it produces
// along the way.
package builder

import (
	"fmt"

	"github.com/PARC/ccnxFileRepo/pkg/chunker"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
)

// Putter is the subset of *store.Store the builder writes through; it is an
// interface so the builder can be tested against an in-memory fake and so
// it does not depend on the store package's concrete type.
type Putter interface {
	Put(wire []byte) (digest.Digest, error)
}

// Build constructs a skewed manifest for name over chunks (in forward,
// offset-ascending order) and writes every content object and interior
// manifest it produces into dst. fanout is the hash group capacity, N, at
// which a group rotates into a wrapped interior manifest; callers that
// don't need a non-default value pass constants.HashGroupFanout. Build
// returns the root manifest and its digest.
//
// chunks are consumed in reverse file order: the builder prepends each new
// pointer to the current hash group, so the group's final pointer order is
// ascending by offset even though construction proceeds backwards. When a
// group fills (object.HashGroupPointer count reaches fanout), it is frozen,
// wrapped in its own interior manifest, and replaced by a fresh group whose
// sole pointer names that wrapped manifest — every group after the first
// therefore describes strictly older (lower-offset) data than the manifest
// it points at.
func Build(dst Putter, name string, chunks []chunker.Chunk, blockSize uint32, fanout int) (*object.Manifest, digest.Digest, error) {
	group := &object.HashGroup{}
	var entrySize uint64
	var applicationDataSize uint64

	for _, c := range chunker.Reverse(chunks) {
		obj := &object.ContentObject{Name: name, Payload: c.Data}
		wire, err := obj.Marshal()
		if err != nil {
			return nil, digest.Digest{}, repoerr.Format("marshal content object", err)
		}
		d, err := dst.Put(wire)
		if err != nil {
			return nil, digest.Digest{}, err
		}

		entrySize += uint64(len(c.Data))
		applicationDataSize += uint64(len(c.Data))
		group.Prepend(object.HashGroupPointer{Kind: object.PointerData, Digest: d})

		if group.IsFull(fanout) {
			group.BlockSize = blockSize
			group.EntrySize = entrySize
			group.DataSize = entrySize
			entrySize = 0

			wrapped := &object.Manifest{Name: name, Groups: []object.HashGroup{*group}}
			wrappedWire, err := wrapped.Marshal()
			if err != nil {
				return nil, digest.Digest{}, repoerr.Format("marshal interior manifest", err)
			}
			wrappedDigest, err := dst.Put(wrappedWire)
			if err != nil {
				return nil, digest.Digest{}, err
			}

			group = &object.HashGroup{
				Pointers: []object.HashGroupPointer{{Kind: object.PointerManifest, Digest: wrappedDigest}},
			}
		}
	}

	overall, err := overallDigest(chunks)
	if err != nil {
		return nil, digest.Digest{}, err
	}

	// group is always freshly allocated at the last rotation (or never
	// rotated at all for small files), so its BlockSize/EntrySize are zero
	// here; only DataSize and OverallDataDigest describe the whole file.
	group.DataSize = applicationDataSize
	group.OverallDataDigest = &overall

	root := &object.Manifest{Name: name, Groups: []object.HashGroup{*group}}
	rootWire, err := root.Marshal()
	if err != nil {
		return nil, digest.Digest{}, repoerr.Format("marshal root manifest", err)
	}
	rootDigest, err := dst.Put(rootWire)
	if err != nil {
		return nil, digest.Digest{}, err
	}

	return root, rootDigest, nil
}

// overallDigest computes the SHA-256 of the file's byte stream in forward
// (offset-ascending) order.
//
// The legacy C builder instead feeds its overall-data hasher chunks in the
// same reverse order it walks them in, so the stored digest does not match
// a plain sha256sum of the file; this reimplementation uses forward order,
// the convention a caller checking "does this manifest describe this file"
// would expect.
func overallDigest(chunksInOrder []chunker.Chunk) (digest.Digest, error) {
	h := digest.NewHasher()
	for _, c := range chunksInOrder {
		if _, err := h.Write(c.Data); err != nil {
			return digest.Digest{}, fmt.Errorf("builder: hash chunk at offset %d: %w", c.Offset, err)
		}
	}
	return h.Sum(), nil
}
