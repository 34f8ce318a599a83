package portal

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
	"github.com/PARC/ccnxFileRepo/pkg/wire"
)

// Conn is the subset of transport.Conn a Network portal needs: a plain
// byte stream. Accepting this rather than transport.Conn directly keeps
// this package free of a dependency on the concrete transport package.
type Conn interface {
	io.Reader
	io.Writer
}

// Network is a Portal backed by a single stream-oriented transport
// connection (QUIC or TCP+TLS), framed with pkg/wire. Since a Fetcher only
// ever has one outstanding request, Network needs no demultiplexing: Send
// writes one frame, Receive reads the next one back.
type Network struct {
	conn    Conn
	seq     uint64
	lastErr bool
}

// NewNetwork wraps conn as a Portal.
func NewNetwork(conn Conn) *Network {
	return &Network{conn: conn}
}

// Send implements Portal.
func (n *Network) Send(ctx context.Context, locator string, digestRestriction *digest.Digest) error {
	if err := ctx.Err(); err != nil {
		return repoerr.Transport("context cancelled before send", err)
	}
	seq := atomic.AddUint64(&n.seq, 1)
	frame := wire.NewFetchFrame(seq, locator, digestRestriction)
	if err := wire.WriteFrame(n.conn, frame); err != nil {
		return repoerr.Transport("write fetch frame", err)
	}
	return nil
}

// Receive implements Portal.
func (n *Network) Receive(ctx context.Context) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, repoerr.Transport("context cancelled before receive", err)
	}

	frame, err := wire.ReadFrame(n.conn)
	if err != nil {
		n.lastErr = true
		return Response{}, repoerr.Transport("read response frame", err)
	}

	switch body := frame.Body.(type) {
	case *wire.ManifestBody:
		n.lastErr = false
		return Response{Kind: ResponseManifest, Manifest: body.Manifest}, nil
	case *wire.ObjectBody:
		n.lastErr = false
		return Response{Kind: ResponseObject, Object: body.Object}, nil
	case *wire.Error:
		n.lastErr = true
		return Response{}, repoerr.Protocol(body.Error(), nil)
	default:
		n.lastErr = true
		return Response{}, repoerr.Protocol("response frame carried an unexpected body", nil)
	}
}

// IsError implements Portal.
func (n *Network) IsError() bool {
	return n.lastErr
}
