// Package main implements the ccnxfilerepo CLI: a producer/consumer host
// for content-addressed file transfer over an ICN-style Portal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/PARC/ccnxFileRepo/pkg/builder"
	"github.com/PARC/ccnxFileRepo/pkg/chunker"
	"github.com/PARC/ccnxFileRepo/pkg/constants"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/fetcher"
	"github.com/PARC/ccnxFileRepo/pkg/locator"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/portal"
	"github.com/PARC/ccnxFileRepo/pkg/store"
	"github.com/PARC/ccnxFileRepo/pkg/transport"
	"github.com/PARC/ccnxFileRepo/pkg/transport/quic"
	"github.com/PARC/ccnxFileRepo/pkg/transport/tcp"
)

// Build-time variables set by ldflags
var (
	version    = "dev"
	buildTime  = "unknown"
	commitHash = "unknown"
)

func init() {
	transport.DefaultRegistry.Register("quic", quic.New())
	transport.DefaultRegistry.Register("tcp", tcp.New())
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	var err error
	switch command {
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		printUsage()
	case "put":
		err = runPut(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ccnxfilerepo: %v\n", err)
		os.Exit(1)
	}
}

// runPut publishes a file into a local digest store, building its manifest
// tree, and prints the locator a consumer would fetch it by.
func runPut(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ccnxfilerepo put <store-dir> <file>")
	}
	storeDir, filePath := args[0], args[1]

	log := logrus.New()
	st, err := store.New(storeDir, store.WithLogger(log))
	if err != nil {
		return err
	}

	chunks, err := chunker.File(filePath, constants.DefaultBlockSize)
	if err != nil {
		return fmt.Errorf("chunk file: %w", err)
	}

	name := filePath
	_, rootDigest, err := builder.Build(st, name, chunks, constants.DefaultBlockSize, constants.HashGroupFanout)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}

	key := locator.Derive(name, rootDigest)
	fmt.Printf("published %s\n", filePath)
	fmt.Printf("  root digest: %s\n", rootDigest)
	fmt.Printf("  locator:     %s\n", key)
	return nil
}

// runGet fetches a file previously published into the same store under its
// root digest, writing the reassembled content to out. It uses an
// in-process Loopback portal, for a consumer running in the same process as
// the store; runFetch is the equivalent networked path, dialing a
// transport.Conn and wrapping it with portal.NewNetwork.
func runGet(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: ccnxfilerepo get <store-dir> <root-digest-hex> <out-file>")
	}
	storeDir, digestHex, outPath := args[0], args[1], args[2]

	st, err := store.New(storeDir)
	if err != nil {
		return err
	}

	rootDigest, err := digest.ParseHex(digestHex)
	if err != nil {
		return fmt.Errorf("parse root digest: %w", err)
	}

	wire, err := st.Get(rootDigest)
	if err != nil {
		return fmt.Errorf("load root manifest: %w", err)
	}
	_, root, err := object.Decode(wire)
	if err != nil {
		return fmt.Errorf("decode root manifest: %w", err)
	}
	if root == nil {
		return fmt.Errorf("digest %s does not name a manifest", rootDigest)
	}

	const locatorName = "fetch"
	lb := portal.NewLoopback(st, map[string]digest.Digest{locatorName: rootDigest})
	f := fetcher.New(lb, locatorName, root)

	data, err := fetcher.Drain(context.Background(), f, constants.DefaultBlockSize)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Printf("fetched %d bytes into %s\n", len(data), outPath)
	return nil
}

func printVersion() {
	fmt.Printf("ccnxfilerepo %s\n", version)
	fmt.Printf("Built: %s\n", buildTime)
	fmt.Printf("Commit: %s\n", commitHash)
}

func printUsage() {
	fmt.Printf(`ccnxfilerepo v%s - content-addressed file transfer over ICN

Usage:
  ccnxfilerepo <command> [options]

Commands:
  put <store-dir> <file>                                 Publish a file and print its locator
  get <store-dir> <root-digest> <out-file>                Fetch a published file by root digest (in-process Loopback portal)
  serve <store-dir> <locator> <root-digest> <addr> [tr]   Serve a published file over the network (producer; tr: quic|tcp, default quic)
  fetch <addr> <locator> <out-file> [tr]                  Fetch a file from a running serve producer (consumer; tr: quic|tcp, default quic)
  version                                                 Show version information
  help                                                     Show this help message

Examples:
  ccnxfilerepo put ./repo ./report.pdf
  ccnxfilerepo get ./repo 3b1f...e4 ./report.out.pdf
  ccnxfilerepo serve ./repo report.pdf 3b1f...e4 127.0.0.1:9696
  ccnxfilerepo fetch 127.0.0.1:9696 report.pdf ./report.out.pdf

`, version)
}
