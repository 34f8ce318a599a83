// Package fetcher implements the manifest fetcher: a strictly sequential,
// stop-and-wait traversal of a manifest tree that reassembles the original
// file content into a caller-supplied buffer one Portal round trip at a
// time.
package fetcher

import (
	"context"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/object"
	"github.com/PARC/ccnxFileRepo/pkg/portal"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
)

// frame tracks traversal position within one manifest: which group, and
// which pointer within that group, comes next.
type frame struct {
	manifest *object.Manifest
	groupIdx int
	ptrIdx   int
}

// next returns the frame's next pointer, advancing past any exhausted
// groups. ok is false once every group in the frame's manifest has been
// consumed.
func (f *frame) next() (object.HashGroupPointer, bool) {
	for f.groupIdx < len(f.manifest.Groups) {
		g := &f.manifest.Groups[f.groupIdx]
		if f.ptrIdx < len(g.Pointers) {
			p := g.Pointers[f.ptrIdx]
			f.ptrIdx++
			return p, true
		}
		f.groupIdx++
		f.ptrIdx = 0
	}
	return object.HashGroupPointer{}, false
}

// Fetcher walks a manifest tree one pointer at a time, issuing exactly one
// outstanding Portal request at any moment.
type Fetcher struct {
	portal  portal.Portal
	locator string
	stack   []*frame
	carry   []byte
}

// New creates a Fetcher over root, requesting subsequent objects from p
// under the given locator.
func New(p portal.Portal, locator string, root *object.Manifest) *Fetcher {
	return &Fetcher{
		portal:  p,
		locator: locator,
		stack:   []*frame{{manifest: root}},
	}
}

// FetchRoot issues an unrestricted request (no digest restriction) for
// locator and returns the root manifest a producer responds with. A
// networked consumer calls this once, before constructing a Fetcher with
// New, to learn the root it should traverse; an in-process caller that
// already holds the root manifest (e.g. from its own store) can skip
// straight to New.
func FetchRoot(ctx context.Context, p portal.Portal, locator string) (*object.Manifest, error) {
	if err := p.Send(ctx, locator, nil); err != nil {
		return nil, repoerr.Transport("send root manifest request", err)
	}
	resp, err := p.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if resp.Kind != portal.ResponseManifest {
		return nil, repoerr.Protocol("root request did not return a manifest", nil)
	}
	return resp.Manifest, nil
}

// nextPointer pops exhausted frames off the stack until it finds one with a
// pointer left to visit, or the stack is empty.
func (f *Fetcher) nextPointer() (object.HashGroupPointer, bool) {
	for len(f.stack) > 0 {
		top := f.stack[len(f.stack)-1]
		if p, ok := top.next(); ok {
			return p, true
		}
		f.stack = f.stack[:len(f.stack)-1]
	}
	return object.HashGroupPointer{}, false
}

// fetchPointer issues a single digest-restricted request for p and verifies
// the response's own digest matches what was requested. The legacy fetcher
// never performed this check; this reimplementation treats a mismatch as a
// DigestMismatch error rather than silently accepting substituted data.
func (f *Fetcher) fetchPointer(ctx context.Context, p object.HashGroupPointer) (portal.Response, error) {
	d := p.Digest
	if err := f.portal.Send(ctx, f.locator, &d); err != nil {
		return portal.Response{}, repoerr.Transport("send fetch request", err)
	}
	resp, err := f.portal.Receive(ctx)
	if err != nil {
		return portal.Response{}, err
	}

	var got digest.Digest
	switch resp.Kind {
	case portal.ResponseManifest:
		got, err = resp.Manifest.Digest()
	case portal.ResponseObject:
		got, err = resp.Object.Digest()
	default:
		return resp, repoerr.Protocol("response carried neither a manifest nor an object", nil)
	}
	if err != nil {
		return resp, repoerr.Format("digest received response", err)
	}
	if got != d {
		return resp, repoerr.DigestMismatch(d, got)
	}
	return resp, nil
}

// FillBuffer fills buf with as much file content as the current traversal
// state and one or more Portal round trips can produce. It returns the
// number of bytes written, whether the end of the file has been reached
// (no pointer remains anywhere on the stack), and any error encountered.
//
// A content object whose payload does not fit in the remaining space of buf
// is only partially copied; the unwritten tail is retained in an internal
// carry buffer and prepended to the next call's output. The legacy C
// fetcher stored the object's *entire* payload as that carry state, which
// would duplicate the already-written prefix on the following call — this
// implementation carries only the unwritten tail.
func (f *Fetcher) FillBuffer(ctx context.Context, buf []byte) (n int, done bool, err error) {
	if len(f.carry) > 0 {
		copied := copy(buf, f.carry)
		f.carry = f.carry[copied:]
		n = copied
	}

	for n < len(buf) {
		p, ok := f.nextPointer()
		if !ok {
			return n, true, nil
		}

		resp, err := f.fetchPointer(ctx, p)
		if err != nil {
			return n, false, err
		}

		switch resp.Kind {
		case portal.ResponseManifest:
			f.stack = append(f.stack, &frame{manifest: resp.Manifest})
		case portal.ResponseObject:
			payload := resp.Object.Payload
			remaining := len(buf) - n
			if remaining >= len(payload) {
				n += copy(buf[n:], payload)
			} else {
				n += copy(buf[n:], payload[:remaining])
				tail := make([]byte, len(payload)-remaining)
				copy(tail, payload[remaining:])
				f.carry = tail
				return n, false, nil
			}
		}
	}

	return n, false, nil
}

// Drain repeatedly calls FillBuffer with a blockSize buffer until the
// traversal reports done, returning the fully reassembled content. It is a
// convenience for callers (and tests) that don't need to stream the result.
func Drain(ctx context.Context, f *Fetcher, blockSize int) ([]byte, error) {
	var out []byte
	buf := make([]byte, blockSize)
	for {
		n, done, err := f.FillBuffer(ctx, buf)
		if err != nil {
			return nil, err
		}
		out = append(out, buf[:n]...)
		if done {
			return out, nil
		}
	}
}
