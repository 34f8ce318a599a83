// Package object defines the repository's wire data model: content objects,
// hash group pointers, hash groups, and manifests, plus their canonical CBOR
// encoding.
package object

import (
	"fmt"

	"github.com/PARC/ccnxFileRepo/pkg/codec/cborcanon"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
)

// PointerKind distinguishes a HashGroupPointer that names a leaf
// ContentObject from one that names a wrapped child Manifest.
type PointerKind uint8

const (
	PointerData PointerKind = iota
	PointerManifest
)

// ContentObject is a leaf repository entry: a name and its raw payload bytes.
type ContentObject struct {
	Name    string `cbor:"name"`
	Payload []byte `cbor:"payload"`
}

// Digest computes the content digest of o's wire encoding.
func (o *ContentObject) Digest() (digest.Digest, error) {
	wire, err := o.Marshal()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Sum(wire), nil
}

// Marshal encodes o to canonical CBOR.
func (o *ContentObject) Marshal() ([]byte, error) {
	return cborcanon.Marshal(objectEnvelope{Kind: envelopeContentObject, Object: o})
}

// HashGroupPointer names either a ContentObject or a child Manifest by
// content digest.
type HashGroupPointer struct {
	Kind   PointerKind  `cbor:"kind"`
	Digest digest.Digest `cbor:"digest"`
}

// HashGroup is one fan-out level of a manifest tree: an ordered list of
// pointers plus metadata about the data they collectively describe.
type HashGroup struct {
	Pointers          []HashGroupPointer `cbor:"pointers"`
	BlockSize         uint32             `cbor:"block_size"`
	EntrySize         uint64             `cbor:"entry_size"`
	DataSize          uint64             `cbor:"data_size"`
	OverallDataDigest *digest.Digest     `cbor:"overall_data_digest,omitempty"`
}

// IsFull reports whether g already holds fanout pointers, the caller's
// chosen hash group capacity (see Build, which threads this through rather
// than reading a package-level default).
func (g *HashGroup) IsFull(fanout int) bool {
	return len(g.Pointers) >= fanout
}

// Prepend inserts p at the front of g's pointer list, the direction the
// builder consumes chunks in (last chunk first).
func (g *HashGroup) Prepend(p HashGroupPointer) {
	g.Pointers = append([]HashGroupPointer{p}, g.Pointers...)
}

// Manifest is a named tree of hash groups, the repository's directory-entry
// equivalent.
type Manifest struct {
	Name   string      `cbor:"name"`
	Groups []HashGroup `cbor:"groups"`
}

// Marshal encodes m to canonical CBOR.
func (m *Manifest) Marshal() ([]byte, error) {
	return cborcanon.Marshal(objectEnvelope{Kind: envelopeManifest, Manifest: m})
}

// Digest computes the content digest of m's wire encoding.
func (m *Manifest) Digest() (digest.Digest, error) {
	wire, err := m.Marshal()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Sum(wire), nil
}

// envelopeKind tags which of ContentObject/Manifest a wire-encoded
// objectEnvelope carries, mirroring how the store tells the two kinds of
// repository entry apart without a separate side channel.
type envelopeKind uint8

const (
	envelopeContentObject envelopeKind = iota
	envelopeManifest
)

type objectEnvelope struct {
	Kind     envelopeKind   `cbor:"kind"`
	Object   *ContentObject `cbor:"object,omitempty"`
	Manifest *Manifest      `cbor:"manifest,omitempty"`
}

// Decode decodes wire bytes produced by ContentObject.Marshal or
// Manifest.Marshal, returning whichever of the two was encoded.
func Decode(wire []byte) (obj *ContentObject, manifest *Manifest, err error) {
	var env objectEnvelope
	if err := cborcanon.Unmarshal(wire, &env); err != nil {
		return nil, nil, fmt.Errorf("object: decode envelope: %w", err)
	}
	switch env.Kind {
	case envelopeContentObject:
		if env.Object == nil {
			return nil, nil, fmt.Errorf("object: envelope tagged ContentObject carries no object")
		}
		return env.Object, nil, nil
	case envelopeManifest:
		if env.Manifest == nil {
			return nil, nil, fmt.Errorf("object: envelope tagged Manifest carries no manifest")
		}
		return nil, env.Manifest, nil
	default:
		return nil, nil, fmt.Errorf("object: unknown envelope kind %d", env.Kind)
	}
}
