// Package wire implements the repository's request/response framing
// protocol over a concrete Portal transport. A Frame carries either a fetch
// request or one of the two response bodies (Manifest, ContentObject), or an
// Error.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/PARC/ccnxFileRepo/pkg/codec/cborcanon"
	"github.com/PARC/ccnxFileRepo/pkg/constants"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
)

// Frame is the common envelope for every message exchanged over a Portal's
// concrete network transport.
type Frame struct {
	V    uint16      `cbor:"v"`    // protocol version
	Kind uint16      `cbor:"kind"` // constants.Kind{Fetch,Manifest,Object,Error}
	Seq  uint64      `cbor:"seq"`  // request/response correlation
	Body interface{} `cbor:"body"`
}

// FetchBody is the body of a KindFetch request frame.
type FetchBody struct {
	Locator           string         `cbor:"locator"`
	DigestRestriction *digest.Digest `cbor:"digest_restriction,omitempty"`
}

// ManifestBody is the body of a KindManifest response frame.
type ManifestBody struct {
	Manifest *object.Manifest `cbor:"manifest"`
}

// ObjectBody is the body of a KindObject response frame.
type ObjectBody struct {
	Object *object.ContentObject `cbor:"object"`
}

// NewFetchFrame builds a fetch request frame. restriction may be nil to
// request the root manifest.
func NewFetchFrame(seq uint64, locator string, restriction *digest.Digest) *Frame {
	return &Frame{
		V:    constants.ProtocolVersion,
		Kind: constants.KindFetch,
		Seq:  seq,
		Body: &FetchBody{Locator: locator, DigestRestriction: restriction},
	}
}

// NewManifestFrame builds a manifest response frame.
func NewManifestFrame(seq uint64, m *object.Manifest) *Frame {
	return &Frame{
		V:    constants.ProtocolVersion,
		Kind: constants.KindManifest,
		Seq:  seq,
		Body: &ManifestBody{Manifest: m},
	}
}

// NewObjectFrame builds a content-object response frame.
func NewObjectFrame(seq uint64, o *object.ContentObject) *Frame {
	return &Frame{
		V:    constants.ProtocolVersion,
		Kind: constants.KindObject,
		Seq:  seq,
		Body: &ObjectBody{Object: o},
	}
}

// NewErrorFrame builds an error response frame.
func NewErrorFrame(seq uint64, e *Error) *Frame {
	return &Frame{
		V:    constants.ProtocolVersion,
		Kind: constants.KindError,
		Seq:  seq,
		Body: e,
	}
}

// Marshal encodes the frame to canonical CBOR.
func (f *Frame) Marshal() ([]byte, error) {
	return cborcanon.Marshal(f)
}

// wireFrame mirrors Frame but with a raw body, used so Unmarshal can decode
// Body into the concrete type its Kind names.
type wireFrame struct {
	V    uint16          `cbor:"v"`
	Kind uint16          `cbor:"kind"`
	Seq  uint64          `cbor:"seq"`
	Body cbor.RawMessage `cbor:"body"`
}

// Unmarshal decodes canonical CBOR data into a Frame, resolving Body into
// the concrete type named by Kind.
func Unmarshal(data []byte) (*Frame, error) {
	var raw wireFrame
	if err := cborcanon.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wire: decode frame: %w", err)
	}

	f := &Frame{V: raw.V, Kind: raw.Kind, Seq: raw.Seq}
	switch raw.Kind {
	case constants.KindFetch:
		var body FetchBody
		if err := cborcanon.Unmarshal(raw.Body, &body); err != nil {
			return nil, fmt.Errorf("wire: decode fetch body: %w", err)
		}
		f.Body = &body
	case constants.KindManifest:
		var body ManifestBody
		if err := cborcanon.Unmarshal(raw.Body, &body); err != nil {
			return nil, fmt.Errorf("wire: decode manifest body: %w", err)
		}
		f.Body = &body
	case constants.KindObject:
		var body ObjectBody
		if err := cborcanon.Unmarshal(raw.Body, &body); err != nil {
			return nil, fmt.Errorf("wire: decode object body: %w", err)
		}
		f.Body = &body
	case constants.KindError:
		var body Error
		if err := cborcanon.Unmarshal(raw.Body, &body); err != nil {
			return nil, fmt.Errorf("wire: decode error body: %w", err)
		}
		f.Body = &body
	default:
		return nil, fmt.Errorf("wire: unknown frame kind %d", raw.Kind)
	}
	return f, nil
}

// IsKind reports whether the frame is of the given kind.
func (f *Frame) IsKind(kind uint16) bool {
	return f.Kind == kind
}
