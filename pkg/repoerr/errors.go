// Package repoerr implements the repository's error taxonomy: IOError,
// StorageError, TransportError, ProtocolError, DigestMismatch, and
// FormatError.
package repoerr

import (
	"errors"
	"fmt"
	"time"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
)

// Kind classifies an Error into one of the six taxonomy members.
type Kind string

const (
	KindIO             Kind = "IOError"
	KindStorage        Kind = "StorageError"
	KindTransport      Kind = "TransportError"
	KindProtocol       Kind = "ProtocolError"
	KindDigestMismatch Kind = "DigestMismatch"
	KindFormat         Kind = "FormatError"
)

// Error is the repository's concrete error type. The store, portal, fetcher
// and builder report their classified failures as *Error so callers can
// tell them apart with Is; lower-level helpers (chunker, object.Decode,
// digest.ParseHex, wire) return plain errors.
type Error struct {
	Kind      Kind
	Message   string
	Digest    *digest.Digest
	Timestamp time.Time
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Digest != nil {
		return fmt.Sprintf("%s: %s (digest %s)", e.Kind, e.Message, e.Digest)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Timestamp: time.Now(), Cause: cause}
}

func newErrWithDigest(kind Kind, message string, d digest.Digest, cause error) *Error {
	return &Error{Kind: kind, Message: message, Digest: &d, Timestamp: time.Now(), Cause: cause}
}

// IO wraps a filesystem-level failure (open/read/write/rename).
func IO(message string, cause error) *Error {
	return newErr(KindIO, message, cause)
}

// Storage wraps a digest-store-level failure (missing object, corrupt layout).
func Storage(message string, d digest.Digest, cause error) *Error {
	return newErrWithDigest(KindStorage, message, d, cause)
}

// Transport wraps a Portal/Channel-level failure (send/receive/timeout).
func Transport(message string, cause error) *Error {
	return newErr(KindTransport, message, cause)
}

// Protocol wraps a violation of the request/response contract (unexpected
// response kind, malformed frame).
func Protocol(message string, cause error) *Error {
	return newErr(KindProtocol, message, cause)
}

// DigestMismatch reports that a fetched object's computed digest does not
// equal the digest that was requested.
func DigestMismatch(want, got digest.Digest) *Error {
	return &Error{
		Kind:      KindDigestMismatch,
		Message:   fmt.Sprintf("fetched object digest %s does not match requested digest %s", got, want),
		Digest:    &want,
		Timestamp: time.Now(),
	}
}

// Format wraps a wire/encoding-level failure (invalid CBOR, unknown object kind).
func Format(message string, cause error) *Error {
	return newErr(KindFormat, message, cause)
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
