package locator

import (
	"testing"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
)

func TestDeriveIsStable(t *testing.T) {
	root := digest.Sum([]byte("manifest wire bytes"))
	a := Derive("report.pdf", root)
	b := Derive("report.pdf", root)
	if !a.Equal(b) {
		t.Fatal("Derive should be deterministic for the same name and root digest")
	}
}

func TestDeriveDistinguishesRootDigest(t *testing.T) {
	rootA := digest.Sum([]byte("version one"))
	rootB := digest.Sum([]byte("version two"))
	a := Derive("report.pdf", rootA)
	b := Derive("report.pdf", rootB)
	if a.Equal(b) {
		t.Fatal("different root digests must not derive the same key")
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	root := digest.Sum([]byte("data"))
	k := Derive("notes.txt", root)
	s := k.String()
	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !k.Equal(parsed) {
		t.Fatal("round-tripped key does not equal original")
	}
}

func TestParseRejectsBadPrefix(t *testing.T) {
	if _, err := Parse("nope:abcdefg"); err == nil {
		t.Fatal("expected an error for a missing ccx: prefix")
	}
}

func TestParseRejectsBadLength(t *testing.T) {
	if _, err := Parse(Prefix + ":aa"); err == nil {
		t.Fatal("expected an error for a too-short decoded key")
	}
}

// TestDeriveNormalizesUnicodeForm checks that a name spelled with a
// precomposed accented codepoint (NFC) and the same name spelled with a
// base letter plus a combining accent (NFD) derive the same key, since
// Derive normalizes to NFC before hashing. Both forms are written as literal
// UTF-8 characters; the fixture check below fails if the two literals ever
// end up byte-identical.
func TestDeriveNormalizesUnicodeForm(t *testing.T) {
	root := digest.Sum([]byte("data"))
	nfcName := "caf" + "é" + ".txt" // LATIN SMALL LETTER E WITH ACUTE
	nfdName := "caf" + "é" + ".txt" // "e" + COMBINING ACUTE ACCENT
	if nfcName == nfdName {
		t.Fatal("test fixture error: NFC and NFD forms must differ byte-for-byte")
	}
	nfc := Derive(nfcName, root)
	nfd := Derive(nfdName, root)
	if !nfc.Equal(nfd) {
		t.Fatal("Derive should normalize to NFC before hashing, so NFC and NFD forms collide")
	}
}
