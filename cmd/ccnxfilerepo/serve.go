package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/store"
	"github.com/PARC/ccnxFileRepo/pkg/transport"
	"github.com/PARC/ccnxFileRepo/pkg/wire"
)

// runServe listens for networked fetch requests and serves them out of a
// local digest store: the producer side of the §6 request/response
// contract. It is modeled on the original repository server's
// listen-receive-respond loop — a request carrying a digest restriction is
// served directly out of the store, an unrestricted request gets back the
// root manifest published under locatorName — except here each accepted
// connection is served by its own goroutine rather than a single blocking
// loop.
func runServe(args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return fmt.Errorf("usage: ccnxfilerepo serve <store-dir> <locator-name> <root-digest-hex> <addr> [quic|tcp]")
	}
	storeDir, locatorName, digestHex, addr := args[0], args[1], args[2], args[3]
	transportName := "quic"
	if len(args) == 5 {
		transportName = args[4]
	}

	st, err := store.New(storeDir)
	if err != nil {
		return err
	}
	rootDigest, err := digest.ParseHex(digestHex)
	if err != nil {
		return fmt.Errorf("parse root digest: %w", err)
	}
	if !st.Has(rootDigest) {
		return fmt.Errorf("store has no object at digest %s", rootDigest)
	}

	tr, ok := transport.DefaultRegistry.Get(transportName)
	if !ok {
		return fmt.Errorf("unknown transport %q (registered: %v)", transportName, transport.DefaultRegistry.List())
	}

	tlsConfig, err := selfSignedTLSConfig()
	if err != nil {
		return fmt.Errorf("generate TLS config: %w", err)
	}
	cfg := transport.DefaultConfig()
	cfg.TLSConfig = tlsConfig

	ctx := context.Background()
	listener, err := tr.Listen(ctx, addr, cfg)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()
	fmt.Printf("serving %q (root %s) on %s via %s\n", locatorName, rootDigest, listener.Addr(), tr.Name())

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go serveConn(conn, st, locatorName, rootDigest)
	}
}

// serveConn answers every fetch request on conn until the peer closes it or
// sends a frame the protocol can't parse.
func serveConn(conn transport.Conn, st *store.Store, locatorName string, rootDigest digest.Digest) {
	defer conn.Close()
	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}

		req, ok := frame.Body.(*wire.FetchBody)
		if !ok {
			if wire.WriteFrame(conn, wire.NewErrorFrame(frame.Seq, wire.ErrMalformedFrame("expected a fetch request"))) != nil {
				return
			}
			continue
		}
		if req.Locator != locatorName {
			if wire.WriteFrame(conn, wire.NewErrorFrame(frame.Seq, wire.ErrNotFound(req.Locator))) != nil {
				return
			}
			continue
		}

		d := rootDigest
		if req.DigestRestriction != nil {
			d = *req.DigestRestriction
		}

		raw, err := st.Get(d)
		if err != nil {
			if wire.WriteFrame(conn, wire.NewErrorFrame(frame.Seq, wire.ErrNotFound(d.String()))) != nil {
				return
			}
			continue
		}
		obj, manifest, err := object.Decode(raw)
		if err != nil {
			if wire.WriteFrame(conn, wire.NewErrorFrame(frame.Seq, wire.ErrMalformedFrame(err.Error()))) != nil {
				return
			}
			continue
		}

		var resp *wire.Frame
		if manifest != nil {
			resp = wire.NewManifestFrame(frame.Seq, manifest)
		} else {
			resp = wire.NewObjectFrame(frame.Seq, obj)
		}
		if err := wire.WriteFrame(conn, resp); err != nil {
			return
		}
	}
}
