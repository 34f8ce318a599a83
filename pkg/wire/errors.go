package wire

import (
	"fmt"

	"github.com/PARC/ccnxFileRepo/pkg/constants"
)

// Error is the wire representation of a Portal-level failure, carried as the
// body of a KindError frame.
type Error struct {
	Code   uint16 `cbor:"code"`
	Reason string `cbor:"reason"`
}

// NewError creates a new protocol error.
func NewError(code uint16, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("wire error %d: %s", e.Code, e.Reason)
}

// ErrNotFound creates a not-found error for a requested locator/digest.
func ErrNotFound(what string) *Error {
	return NewError(constants.ErrorNotFound, fmt.Sprintf("not found: %s", what))
}

// ErrMalformedFrame creates a malformed-frame error.
func ErrMalformedFrame(reason string) *Error {
	return NewError(constants.ErrorMalformedFrame, reason)
}
