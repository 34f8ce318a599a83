// Package cborcanon provides canonical CBOR encoding helpers used to encode
// every repository wire object (content objects, manifests, frames).
// Canonical encoding guarantees two encoders never disagree on the bytes of
// the same value, which the repository relies on for content addressing.
package cborcanon

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CanonicalMode is a CBOR encoding mode with deterministic map-key order and
// no indefinite-length items: the "Canonical CBOR" of RFC 7049 §3.9, which
// sorts map keys length-first.
var CanonicalMode cbor.EncMode

func init() {
	var err error
	CanonicalMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cborcanon: failed to create canonical encode mode: %v", err))
	}
}

// Marshal encodes v into canonical CBOR.
func Marshal(v interface{}) ([]byte, error) {
	return CanonicalMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// CanonicalBytes re-encodes data in canonical form, for callers that
// received CBOR from an untrusted source and need to confirm it is
// byte-identical to what a correct encoder would have produced.
func CanonicalBytes(data []byte) ([]byte, error) {
	var v interface{}
	if err := Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("cborcanon: invalid CBOR: %w", err)
	}
	return Marshal(v)
}

// IsCanonical reports whether data is already in canonical form.
func IsCanonical(data []byte) bool {
	canonical, err := CanonicalBytes(data)
	if err != nil {
		return false
	}
	return bytes.Equal(data, canonical)
}
