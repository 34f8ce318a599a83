package chunker

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestReaderSplitsIntoBlocks(t *testing.T) {
	data := []byte("0123456789abcdef") // 16 bytes
	chunks, err := Reader(bytes.NewReader(data), 5)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	want := []string{"01234", "56789", "abcde", "f"}
	for i, c := range chunks {
		if string(c.Data) != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, c.Data, want[i])
		}
		if c.Index != i {
			t.Errorf("chunk %d has Index %d", i, c.Index)
		}
	}
}

func TestReaderEmpty(t *testing.T) {
	chunks, err := Reader(bytes.NewReader(nil), 4096)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("got %d chunks for empty input, want 0", len(chunks))
	}
}

func TestReaderExactMultiple(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 12)
	chunks, err := Reader(bytes.NewReader(data), 4)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Data) != 4 {
			t.Errorf("chunk has %d bytes, want 4", len(c.Data))
		}
	}
}

func TestReverseOrder(t *testing.T) {
	chunks, err := Reader(bytes.NewReader([]byte("abcdefgh")), 2)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	reversed := Reverse(chunks)
	if len(reversed) != len(chunks) {
		t.Fatalf("Reverse changed length: %d != %d", len(reversed), len(chunks))
	}
	for i := range chunks {
		if string(reversed[i].Data) != string(chunks[len(chunks)-1-i].Data) {
			t.Errorf("Reverse order mismatch at %d", i)
		}
	}
}

func TestReassembleRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	chunks, err := Reader(bytes.NewReader(original), 7)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if got := Reassemble(chunks); !bytes.Equal(got, original) {
		t.Fatalf("Reassemble mismatch: got %q, want %q", got, original)
	}
}

func TestFileMatchesReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	data := []byte("some file content here, spanning several blocks of bytes")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fromFile, err := File(path, 10)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	fromReader, err := Reader(bytes.NewReader(data), 10)
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if len(fromFile) != len(fromReader) {
		t.Fatalf("chunk count mismatch: %d != %d", len(fromFile), len(fromReader))
	}
	for i := range fromFile {
		if !bytes.Equal(fromFile[i].Data, fromReader[i].Data) {
			t.Errorf("chunk %d mismatch", i)
		}
	}
}

func TestZeroBlockSizeRejected(t *testing.T) {
	if _, err := Reader(bytes.NewReader([]byte("x")), 0); err == nil {
		t.Fatal("expected error for zero block size")
	}
}
