// Package locator derives stable, opaque provider-key strings for use as a
// Portal locator, so that a file's name never has to travel over the wire
// verbatim. It is grounded on the teacher's BLAKE3-based Content Identifier
// encoding, repurposed here: the core content digest is SHA-256
// (pkg/digest), but locator/provider-key derivation keeps BLAKE3, matching
// the domain library the rest of the example pack reaches for when a
// second, distinct hash family is wanted alongside the primary one.
package locator

import (
	"encoding/base32"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"lukechampine.com/blake3"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
)

// Prefix tags every derived locator so a reader can tell it apart from a
// plain filename at a glance.
const Prefix = "ccx"

// Key is an opaque, stable provider key derived from a name and the digest
// of the root manifest it resolves to. Two producers publishing the same
// name with different content never collide, since the root digest is part
// of the derivation.
type Key struct {
	hash [32]byte
}

// Derive computes the provider key for a given locator name and the digest
// of the root manifest it names. name is normalized to Unicode NFC first, so
// two byte-different but canonically equivalent names derive the same key —
// the same reason the teacher normalizes human-readable names before
// resolving them.
func Derive(name string, root digest.Digest) Key {
	normalized := norm.NFC.String(name)

	h := blake3.New(32, nil)
	h.Write([]byte(normalized))
	h.Write(root[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return Key{hash: out}
}

// String renders the key as "ccx:<base32>", lowercase, unpadded.
func (k Key) String() string {
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(k.hash[:])
	return fmt.Sprintf("%s:%s", Prefix, strings.ToLower(encoded))
}

// Parse parses a key string previously produced by String.
func Parse(s string) (Key, error) {
	rest, ok := strings.CutPrefix(s, Prefix+":")
	if !ok {
		return Key{}, fmt.Errorf("locator: missing %q prefix", Prefix+":")
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(rest))
	if err != nil {
		return Key{}, fmt.Errorf("locator: decode key: %w", err)
	}
	if len(raw) != 32 {
		return Key{}, fmt.Errorf("locator: key has %d bytes, want 32", len(raw))
	}
	var k Key
	copy(k.hash[:], raw)
	return k, nil
}

// Equal reports whether two keys are identical.
func (k Key) Equal(other Key) bool {
	return k.hash == other.hash
}
