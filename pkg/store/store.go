// Package store implements the on-disk, content-addressed digest store: a
// flat directory whose entries are named by the hex digest of their
// contents.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/PARC/ccnxFileRepo/pkg/digest"
	"github.com/PARC/ccnxFileRepo/pkg/repoerr"
)

// Store is a flat, content-addressed directory of repository objects.
type Store struct {
	dir string
	log logrus.FieldLogger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the default (silent) logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store rooted at dir. dir is created if it does not exist.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, repoerr.IO(fmt.Sprintf("create store directory %s", dir), err)
	}
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	s := &Store{dir: dir, log: silent}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// path returns the on-disk path for a digest's entry.
func (s *Store) path(d digest.Digest) string {
	return filepath.Join(s.dir, d.Hex())
}

// Has reports whether an object is already stored under d.
func (s *Store) Has(d digest.Digest) bool {
	_, err := os.Stat(s.path(d))
	return err == nil
}

// Put writes wire under its content digest and returns that digest. Put is
// idempotent: if an object is already stored at the resulting digest, the
// write is skipped. The write is crash-atomic: wire is written to a
// temporary file in dir and then renamed into place, so a reader never
// observes a partially written entry.
func (s *Store) Put(wire []byte) (digest.Digest, error) {
	d := digest.Sum(wire)

	if s.Has(d) {
		s.log.WithField("digest", d).Debug("store: put skipped, object already present")
		return d, nil
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return d, repoerr.IO("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(wire); err != nil {
		tmp.Close()
		return d, repoerr.IO("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return d, repoerr.IO("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return d, repoerr.IO("close temp file", err)
	}

	if err := os.Rename(tmpPath, s.path(d)); err != nil {
		return d, repoerr.IO("rename into place", err)
	}

	s.log.WithFields(logrus.Fields{"digest": d, "bytes": len(wire)}).Info("store: put")
	return d, nil
}

// Get returns the bytes stored under d.
func (s *Store) Get(d digest.Digest) ([]byte, error) {
	data, err := os.ReadFile(s.path(d))
	if err != nil {
		if os.IsNotExist(err) {
			s.log.WithField("digest", d).Warn("store: get miss")
			return nil, repoerr.Storage("object not found", d, err)
		}
		return nil, repoerr.IO(fmt.Sprintf("read object %s", d), err)
	}
	s.log.WithFields(logrus.Fields{"digest": d, "bytes": len(data)}).Debug("store: get hit")
	return data, nil
}

// GetReader returns a stream over the bytes stored under d, for callers that
// don't want to buffer the whole object.
func (s *Store) GetReader(d digest.Digest) (io.ReadCloser, error) {
	f, err := os.Open(s.path(d))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repoerr.Storage("object not found", d, err)
		}
		return nil, repoerr.IO(fmt.Sprintf("open object %s", d), err)
	}
	return f, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}
