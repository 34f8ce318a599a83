package builder

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/PARC/ccnxFileRepo/pkg/chunker"
	"github.com/PARC/ccnxFileRepo/pkg/constants"
	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
)

// memStore is a minimal in-memory Putter/reader used to inspect exactly what
// the builder wrote, without pulling in the store package's filesystem
// dependency.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(wire []byte) (digest.Digest, error) {
	d := digest.Sum(wire)
	m.objects[d.Hex()] = wire
	return d, nil
}

func (m *memStore) get(d digest.Digest) ([]byte, bool) {
	w, ok := m.objects[d.Hex()]
	return w, ok
}

func build(t *testing.T, data []byte, blockSize uint32) (*memStore, *object.Manifest) {
	t.Helper()
	return buildWithFanout(t, data, blockSize, constants.HashGroupFanout)
}

func buildWithFanout(t *testing.T, data []byte, blockSize uint32, fanout int) (*memStore, *object.Manifest) {
	t.Helper()
	chunks, err := chunker.Reader(bytes.NewReader(data), blockSize)
	if err != nil {
		t.Fatalf("chunker.Reader failed: %v", err)
	}
	st := newMemStore()
	m, _, err := Build(st, "file.bin", chunks, blockSize, fanout)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return st, m
}

// fetchAll walks the manifest tree depth-first (following manifest pointers
// in pointer order) and returns the reconstructed file content, exercising
// the tree the same way a fetcher would, without the stop-and-wait state
// machine.
func fetchAll(t *testing.T, st *memStore, m *object.Manifest) []byte {
	t.Helper()
	var out []byte
	for gi := range m.Groups {
		g := &m.Groups[gi]
		for _, p := range g.Pointers {
			wire, ok := st.get(p.Digest)
			if !ok {
				t.Fatalf("missing stored object for digest %x", p.Digest)
			}
			obj, child, err := object.Decode(wire)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			switch {
			case obj != nil:
				out = append(out, obj.Payload...)
			case child != nil:
				out = append(out, fetchAll(t, st, child)...)
			}
		}
	}
	return out
}

func TestEmptyFile(t *testing.T) {
	st, m := build(t, nil, 16)
	if len(m.Groups) != 1 {
		t.Fatalf("expected exactly one group, got %d", len(m.Groups))
	}
	g := m.Groups[0]
	if len(g.Pointers) != 0 {
		t.Fatalf("expected no pointers for an empty file, got %d", len(g.Pointers))
	}
	if g.DataSize != 0 {
		t.Fatalf("DataSize = %d, want 0", g.DataSize)
	}
	if g.OverallDataDigest == nil || *g.OverallDataDigest != digest.Digest(sha256.Sum256(nil)) {
		t.Fatalf("OverallDataDigest should be sha256 of empty input")
	}
	if got := fetchAll(t, st, m); len(got) != 0 {
		t.Fatalf("reconstructed %d bytes, want 0", len(got))
	}
}

func TestSingleChunk(t *testing.T) {
	data := []byte("small file")
	st, m := build(t, data, 4096)
	if len(m.Groups) != 1 || len(m.Groups[0].Pointers) != 1 {
		t.Fatalf("expected one group with one pointer, got %+v", m.Groups)
	}
	if got := fetchAll(t, st, m); !bytes.Equal(got, data) {
		t.Fatalf("reconstructed %q, want %q", got, data)
	}
}

func TestExactlyOneFullGroup(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 4*8) // 4 chunks of 8 bytes = exactly one full group
	st, m := buildWithFanout(t, data, 8, 4)

	// A fully-rotated group wraps into an interior manifest and the root
	// group holds only the trailing manifest pointer.
	if len(m.Groups[0].Pointers) != 1 || m.Groups[0].Pointers[0].Kind != object.PointerManifest {
		t.Fatalf("expected root group to hold a single manifest pointer, got %+v", m.Groups[0].Pointers)
	}
	if got := fetchAll(t, st, m); !bytes.Equal(got, data) {
		t.Fatalf("reconstructed %q, want %q", got, data)
	}
}

func TestOverflowIntoNestedManifest(t *testing.T) {
	// 4 chunks of 3 bytes with fan-out 3: the first 3 (reverse-order)
	// chunks fill and rotate into an interior manifest, leaving the
	// earliest chunk alongside the manifest pointer in the root group.
	data := []byte("abcdefghijkl") // 12 bytes / 3 = 4 chunks
	st, m := buildWithFanout(t, data, 3, 3)

	root := m.Groups[0]
	if len(root.Pointers) != 2 {
		t.Fatalf("expected root group with 2 pointers (data + manifest), got %d: %+v", len(root.Pointers), root.Pointers)
	}
	if root.Pointers[0].Kind != object.PointerData || root.Pointers[1].Kind != object.PointerManifest {
		t.Fatalf("expected [data, manifest] pointer order, got %+v", root.Pointers)
	}
	if got := fetchAll(t, st, m); !bytes.Equal(got, data) {
		t.Fatalf("reconstructed %q, want %q", got, data)
	}
}

func TestPartialFinalChunk(t *testing.T) {
	data := []byte("0123456789") // 10 bytes, block size 4 -> chunks of 4,4,2
	st, m := build(t, data, 4)
	if got := fetchAll(t, st, m); !bytes.Equal(got, data) {
		t.Fatalf("reconstructed %q, want %q", got, data)
	}
}

func TestOverallDigestIsForwardOrder(t *testing.T) {
	data := []byte("the quick brown fox")
	_, m := build(t, data, 5)

	want := digest.Digest(sha256.Sum256(data))
	got := m.Groups[0].OverallDataDigest
	if got == nil || *got != want {
		t.Fatalf("OverallDataDigest = %x, want forward sha256 %x", got, want)
	}
}

func TestTerminalGroupMetadataIsNeverSetByRotation(t *testing.T) {
	// 4 chunks with fan-out 3: one full rotation (3 chunks) leaves a fresh
	// terminal group holding the trailing chunk plus the wrapped
	// manifest's pointer. A rotation only ever stamps BlockSize/EntrySize
	// on the group it is wrapping away, never on the newly created group
	// that survives as the root/terminal one — so the terminal group's
	// BlockSize/EntrySize stay at zero no matter how many rotations
	// preceded it; only DataSize/OverallDataDigest are set on it, and only
	// after the whole file has been consumed.
	data := []byte("aabbccdd")
	_, m := buildWithFanout(t, data, 2, 3)

	root := m.Groups[0]
	if root.BlockSize != 0 {
		t.Errorf("BlockSize = %d, want 0 (never stamped on the terminal group)", root.BlockSize)
	}
	if root.EntrySize != 0 {
		t.Errorf("EntrySize = %d, want 0 (never stamped on the terminal group)", root.EntrySize)
	}
	if root.DataSize != uint64(len(data)) {
		t.Errorf("DataSize = %d, want %d (whole-file size)", root.DataSize, len(data))
	}
}

func TestRoundTripContentAddressing(t *testing.T) {
	data := bytes.Repeat([]byte("content-addressed"), 50)
	st, m := build(t, data, 64)
	if got := fetchAll(t, st, m); !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch over %d bytes", len(data))
	}
}
