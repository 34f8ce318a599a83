package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/PARC/ccnxFileRepo/pkg/builder"
	"github.com/PARC/ccnxFileRepo/pkg/chunker"
	"github.com/PARC/ccnxFileRepo/pkg/constants"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/portal"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
)

// memStore is a minimal in-memory store satisfying both builder.Putter and
// portal.Getter, used to exercise the fetcher against real manifests without
// touching a filesystem.
type memStore struct {
	objects map[digest.Digest][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[digest.Digest][]byte)}
}

func (m *memStore) Put(wire []byte) (digest.Digest, error) {
	d := digest.Sum(wire)
	m.objects[d] = wire
	return d, nil
}

func (m *memStore) Get(d digest.Digest) ([]byte, error) {
	wire, ok := m.objects[d]
	if !ok {
		return nil, fmt.Errorf("fetcher test: no object stored for digest %s", d)
	}
	return wire, nil
}

func buildAndFetch(t *testing.T, data []byte, blockSize uint32, readBufSize int) []byte {
	t.Helper()
	return buildAndFetchWithFanout(t, data, blockSize, readBufSize, constants.HashGroupFanout)
}

func buildAndFetchWithFanout(t *testing.T, data []byte, blockSize uint32, readBufSize int, fanout int) []byte {
	t.Helper()

	chunks, err := chunker.Reader(bytes.NewReader(data), blockSize)
	if err != nil {
		t.Fatalf("chunker.Reader failed: %v", err)
	}

	st := newMemStore()
	root, rootDigest, err := builder.Build(st, "file.bin", chunks, blockSize, fanout)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lb := portal.NewLoopback(st, map[string]digest.Digest{"file.bin": rootDigest})
	f := New(lb, "file.bin", root)

	got, err := Drain(context.Background(), f, readBufSize)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	return got
}

func TestFetchRoundTripLargeBuffer(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox "), 20)
	got := buildAndFetch(t, data, 16, 4096)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestFetchRoundTripSmallBuffer(t *testing.T) {
	// A read buffer far smaller than the chunk size forces the carry path
	// on nearly every content object.
	data := bytes.Repeat([]byte("abcdefgh"), 30)
	got := buildAndFetch(t, data, 16, 3)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch with small read buffer: got %d bytes, want %d", len(got), len(data))
	}
}

func TestFetchRoundTripWithNestedManifests(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 15) // forces several rotations at fan-out 3
	got := buildAndFetchWithFanout(t, data, 5, 7, 3)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch across nested manifests: got %d bytes, want %d", len(got), len(data))
	}
}

func TestFetchEmptyFile(t *testing.T) {
	got := buildAndFetch(t, nil, 16, 64)
	if len(got) != 0 {
		t.Fatalf("expected 0 bytes for an empty file, got %d", len(got))
	}
}

func TestCarryBufferStoresOnlyTail(t *testing.T) {
	st := newMemStore()
	obj := &object.ContentObject{Name: "f", Payload: []byte("0123456789")}
	wire, err := obj.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	d, err := st.Put(wire)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	root := &object.Manifest{
		Name: "f",
		Groups: []object.HashGroup{
			{Pointers: []object.HashGroupPointer{{Kind: object.PointerData, Digest: d}}},
		},
	}

	lb := portal.NewLoopback(st, nil)
	f := New(lb, "f", root)

	buf := make([]byte, 4)
	n, done, err := f.FillBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("FillBuffer failed: %v", err)
	}
	if done || n != 4 || string(buf[:n]) != "0123" {
		t.Fatalf("first FillBuffer: n=%d done=%v buf=%q", n, done, buf[:n])
	}
	if string(f.carry) != "456789" {
		t.Fatalf("carry should hold only the unwritten tail, got %q", f.carry)
	}

	n, done, err = f.FillBuffer(context.Background(), buf)
	if err != nil {
		t.Fatalf("second FillBuffer failed: %v", err)
	}
	if string(buf[:n]) != "4567" {
		t.Fatalf("second FillBuffer should resume after the first chunk's prefix, got %q", buf[:n])
	}
	_ = done
}

func TestDigestMismatchRejected(t *testing.T) {
	st := newMemStore()
	obj := &object.ContentObject{Name: "f", Payload: []byte("real")}
	wire, _ := obj.Marshal()

	// Store wire under a digest that doesn't actually match it, so the
	// fetcher's post-receive verification has something to reject.
	badDigest := digest.Sum([]byte("not the real digest"))
	st.objects[badDigest] = wire

	root := &object.Manifest{
		Name: "f",
		Groups: []object.HashGroup{
			{Pointers: []object.HashGroupPointer{{Kind: object.PointerData, Digest: badDigest}}},
		},
	}

	lb := portal.NewLoopback(st, nil)
	f := New(lb, "f", root)

	buf := make([]byte, 16)
	_, _, err := f.FillBuffer(context.Background(), buf)
	if err == nil {
		t.Fatal("expected a digest mismatch error")
	}
	if !repoerr.Is(err, repoerr.KindDigestMismatch) {
		t.Fatalf("expected a digest mismatch error, got %v", err)
	}
}
