package main

import (
	"context"
	"fmt"
	"os"

	"github.com/PARC/ccnxFileRepo/pkg/constants"
	"github.com/PARC/ccnxFileRepo/pkg/fetcher"
	"github.com/PARC/ccnxFileRepo/pkg/portal"
	"github.com/PARC/ccnxFileRepo/pkg/transport"
)

// runFetch dials a running "serve" producer over a real transport.Conn,
// wraps it with portal.NewNetwork, and drives the same fetcher.New /
// fetcher.Drain traversal runGet uses against a Loopback — the fetcher
// itself does not know or care whether its Portal is in-process or a QUIC
// stream.
func runFetch(args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("usage: ccnxfilerepo fetch <addr> <locator-name> <out-file> [quic|tcp]")
	}
	addr, locatorName, outPath := args[0], args[1], args[2]
	transportName := "quic"
	if len(args) == 4 {
		transportName = args[3]
	}

	tr, ok := transport.DefaultRegistry.Get(transportName)
	if !ok {
		return fmt.Errorf("unknown transport %q (registered: %v)", transportName, transport.DefaultRegistry.List())
	}

	cfg := transport.DefaultConfig()
	cfg.TLSConfig = insecureClientTLSConfig()

	ctx := context.Background()
	conn, err := tr.Dial(ctx, addr, cfg)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	net := portal.NewNetwork(conn)
	root, err := fetcher.FetchRoot(ctx, net, locatorName)
	if err != nil {
		return fmt.Errorf("fetch root manifest: %w", err)
	}
	f := fetcher.New(net, locatorName, root)

	data, err := fetcher.Drain(ctx, f, constants.DefaultBlockSize)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Printf("fetched %d bytes from %s into %s\n", len(data), addr, outPath)
	return nil
}
