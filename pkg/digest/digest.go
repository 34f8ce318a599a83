// Package digest implements the content digest used to name and verify
// repository objects, as specified in the data model's digest convention.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// Size is the length in bytes of a Digest.
const Size = sha256.Size

// Digest is a SHA-256 content digest. The repository's naming, storage path,
// and digest-restriction scheme are all built on this type.
type Digest [Size]byte

// Sum computes the Digest of b.
func Sum(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// Hex returns the lowercase hex encoding of d, used verbatim as a Store
// filename.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}

// Equal reports whether d and other represent the same digest.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// IsZero reports whether d is the zero digest. An absent digest restriction
// is expressed as a nil *Digest, not as the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseHex parses a lowercase or uppercase hex-encoded digest string.
func ParseHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("digest: invalid hex %q: %w", s, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("digest: wrong length for %q: got %d bytes, want %d", s, len(b), Size)
	}
	copy(d[:], b)
	return d, nil
}

// Hasher accumulates a SHA-256 digest incrementally, for callers that cannot
// buffer the whole input before hashing (e.g. the builder's overall-data
// digest, which is fed one chunk at a time).
type Hasher struct {
	h hash.Hash
}

// NewHasher returns a fresh Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write feeds p into the running digest.
func (hs *Hasher) Write(p []byte) (int, error) {
	return hs.h.Write(p)
}

// Sum returns the digest of everything written so far.
func (hs *Hasher) Sum() Digest {
	var d Digest
	copy(d[:], hs.h.Sum(nil))
	return d
}
