// Package portal defines the abstract request/response channel the
// manifest fetcher is built against, plus a Loopback implementation backed
// directly by a Store for tests and same-process use.
package portal

import (
	"context"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
)

// ResponseKind tags which of Manifest/Object a Response carries.
type ResponseKind uint8

const (
	ResponseManifest ResponseKind = iota
	ResponseObject
)

// Response is the tagged union a Portal returns from Receive.
type Response struct {
	Kind     ResponseKind
	Manifest *object.Manifest
	Object   *object.ContentObject
}

// Portal is the request/response channel the fetcher traverses a manifest
// tree over. The core never sees the transport, key/identity, or TLS setup
// beneath it — only this interface.
type Portal interface {
	// Send issues a request for locator, optionally restricted to a single
	// digest. A nil restriction requests the producer's root manifest.
	Send(ctx context.Context, locator string, digestRestriction *digest.Digest) error

	// Receive blocks for the response to the most recent Send.
	Receive(ctx context.Context) (Response, error)

	// IsError reports whether the most recently received response was an
	// error (callers that want the error detail should check the error
	// returned by Receive instead).
	IsError() bool
}
