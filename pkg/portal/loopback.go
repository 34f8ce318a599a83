package portal

import (
	"context"
	"fmt"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
)

// Getter is the subset of *store.Store a Loopback portal reads through.
type Getter interface {
	Get(d digest.Digest) ([]byte, error)
}

// Loopback is a same-process Portal backed directly by a digest store. It is
// used by the fetcher's own tests and by a CLI host that has no network
// peer configured.
type Loopback struct {
	store Getter
	roots map[string]digest.Digest

	pending *pendingRequest
	lastErr bool
}

type pendingRequest struct {
	locator    string
	restricted *digest.Digest
}

// NewLoopback creates a Loopback portal. roots maps a locator name to the
// digest of its producer's root manifest, consulted when Send carries no
// digest restriction.
func NewLoopback(store Getter, roots map[string]digest.Digest) *Loopback {
	return &Loopback{store: store, roots: roots}
}

// Send implements Portal.
func (l *Loopback) Send(ctx context.Context, locator string, digestRestriction *digest.Digest) error {
	if err := ctx.Err(); err != nil {
		return repoerr.Transport("context cancelled before send", err)
	}
	l.pending = &pendingRequest{locator: locator, restricted: digestRestriction}
	return nil
}

// Receive implements Portal.
func (l *Loopback) Receive(ctx context.Context) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, repoerr.Transport("context cancelled before receive", err)
	}
	if l.pending == nil {
		return Response{}, repoerr.Protocol("receive called with no outstanding request", nil)
	}
	req := l.pending
	l.pending = nil

	d := req.restricted
	if d == nil {
		root, ok := l.roots[req.locator]
		if !ok {
			l.lastErr = true
			return Response{}, repoerr.Storage(fmt.Sprintf("no root manifest registered for locator %q", req.locator), digest.Digest{}, nil)
		}
		d = &root
	}

	wire, err := l.store.Get(*d)
	if err != nil {
		l.lastErr = true
		return Response{}, err
	}

	obj, manifest, err := object.Decode(wire)
	if err != nil {
		l.lastErr = true
		return Response{}, repoerr.Format("decode stored object", err)
	}

	l.lastErr = false
	if manifest != nil {
		return Response{Kind: ResponseManifest, Manifest: manifest}, nil
	}
	return Response{Kind: ResponseObject, Object: obj}, nil
}

// IsError implements Portal.
func (l *Loopback) IsError() bool {
	return l.lastErr
}
