package portal

import (
	"context"
	"testing"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
)

type fakeStore struct {
	objects map[digest.Digest][]byte
}

func (s *fakeStore) Get(d digest.Digest) ([]byte, error) {
	wire, ok := s.objects[d]
	if !ok {
		return nil, errNotFound
	}
	return wire, nil
}

var errNotFound = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "not found" }

func TestLoopbackFetchesRootByLocator(t *testing.T) {
	m := &object.Manifest{Name: "f", Groups: []object.HashGroup{{}}}
	wire, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	d := digest.Sum(wire)

	st := &fakeStore{objects: map[digest.Digest][]byte{d: wire}}
	lb := NewLoopback(st, map[string]digest.Digest{"f": d})

	if err := lb.Send(context.Background(), "f", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	resp, err := lb.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if resp.Kind != ResponseManifest || resp.Manifest.Name != "f" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if lb.IsError() {
		t.Fatal("IsError should be false after a successful receive")
	}
}

func TestLoopbackFetchesByDigestRestriction(t *testing.T) {
	obj := &object.ContentObject{Name: "f", Payload: []byte("chunk")}
	wire, _ := obj.Marshal()
	d := digest.Sum(wire)

	st := &fakeStore{objects: map[digest.Digest][]byte{d: wire}}
	lb := NewLoopback(st, nil)

	if err := lb.Send(context.Background(), "f", &d); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	resp, err := lb.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if resp.Kind != ResponseObject || string(resp.Object.Payload) != "chunk" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoopbackUnknownLocatorIsError(t *testing.T) {
	st := &fakeStore{objects: map[digest.Digest][]byte{}}
	lb := NewLoopback(st, nil)

	if err := lb.Send(context.Background(), "missing", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := lb.Receive(context.Background()); err == nil {
		t.Fatal("expected an error for an unregistered locator")
	}
	if !lb.IsError() {
		t.Fatal("IsError should be true after a failed receive")
	}
}

func TestLoopbackReceiveWithoutSend(t *testing.T) {
	lb := NewLoopback(&fakeStore{objects: map[digest.Digest][]byte{}}, nil)
	if _, err := lb.Receive(context.Background()); err == nil {
		t.Fatal("Receive with no outstanding Send should fail")
	}
}
