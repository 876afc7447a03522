// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// Save writes path to "<name>.path" and then its manifest to
// "<name>.meta", each atomically. The old manifest is gone before the
// new stream lands, so a crash between the two leaves the new stream
// loadable without verification. An existing file under the same name
// is replaced. Save writes even an empty path; deciding whether an
// empty recording deserves a file is the caller's job.
//
// Stream failures are [*IOError] values. A waypoint the codec refuses
// (an oversized or non-UTF-8 world id) fails Save without touching the
// existing file.
func (s *Store) Save(path *trail.Path) error {
	name := path.Name()
	points := path.Waypoints()
	hasher := newHasher()

	err := s.OpenForWrite(name, func(w io.Writer) error {
		sink := &trackingWriter{w: w}
		if err := path.Kind().Encode(io.MultiWriter(sink, hasher), points); err != nil {
			if sink.err != nil {
				return &IOError{Op: "write", Name: name, Err: sink.err}
			}
			return fmt.Errorf("encoding path %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	manifest := Manifest{
		Kind:       path.Kind(),
		Waypoints:  len(points),
		Digest:     finish(hasher),
		RecordedAt: s.clock.Now().UnixMilli(),
	}
	if err := s.writeManifest(name, manifest); err != nil {
		// The stream is in place without a manifest and loads as a
		// movement path.
		return err
	}

	s.logger.Debug("path saved",
		"path", name,
		"kind", path.Kind(),
		"waypoints", len(points),
		"digest", manifest.Digest,
	)
	return nil
}

// Load reads and verifies the stored path called name.
//
// A missing file yields an error wrapping both trail.ErrNotFound and
// fs.ErrNotExist. A stream ending inside a record wraps
// waypoint.ErrMalformedRecord. When a manifest exists, the stream must
// match its digest and waypoint count or the error wraps
// [ErrDigestMismatch]. Without a manifest the file is decoded as a
// movement path.
func (s *Store) Load(name string) (*trail.Path, error) {
	manifest, hasManifest, err := s.ReadManifest(name)
	if err != nil {
		return nil, err
	}
	kind := trail.KindMovement
	if hasManifest {
		kind = manifest.Kind
	}

	hasher := newHasher()
	decoded, err := s.decode(name, kind, hasher)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", trail.ErrNotFound, err)
		}
		return nil, err
	}

	if hasManifest {
		if digest := finish(hasher); digest != manifest.Digest {
			return nil, fmt.Errorf("path %q: %w: stored %s, computed %s",
				name, ErrDigestMismatch, manifest.Digest, digest)
		}
		if len(decoded) != manifest.Waypoints {
			return nil, fmt.Errorf("path %q: %w: manifest lists %d waypoints, stream holds %d",
				name, ErrDigestMismatch, manifest.Waypoints, len(decoded))
		}
	}

	return trail.New(name, kind, decoded)
}

// LoadAll loads every stored path and registers it. A path that fails
// to load is logged and skipped, and does not stop the others. Names
// already present in registry keep their existing path. Returns the
// number of paths this call registered; err is non-nil only when the
// directory itself cannot be listed.
func (s *Store) LoadAll(registry *trail.Registry) (loaded int, err error) {
	names, err := s.List()
	if err != nil {
		return 0, err
	}

	for _, name := range names {
		path, err := s.Load(name)
		if err != nil {
			s.logger.Warn("path could not be loaded",
				"path", name,
				"directory", s.directory,
				"error", err,
			)
			continue
		}
		if _, inserted := registry.Register(path); !inserted {
			s.logger.Debug("path already registered, keeping existing", "path", name)
			continue
		}
		loaded++
	}

	s.logger.Info("paths loaded",
		"directory", s.directory,
		"loaded", loaded,
		"files", len(names),
	)
	return loaded, nil
}

// decode streams the file for name through hasher into kind's decoder.
// Read failures of the file itself become [*IOError]; format errors
// from the decoder pass through wrapped with the path name.
func (s *Store) decode(name string, kind trail.Kind, hasher *blake3.Hasher) ([]waypoint.Waypoint, error) {
	var points []waypoint.Waypoint
	err := s.OpenForRead(name, func(r io.Reader) error {
		source := &trackingReader{r: r}
		decoded, err := kind.Decode(io.TeeReader(source, hasher))
		if err != nil {
			if source.err != nil {
				return &IOError{Op: "read", Name: name, Err: source.err}
			}
			return fmt.Errorf("path %q: %w", name, err)
		}
		points = decoded
		return nil
	})
	return points, err
}

// trackingWriter remembers the first error of the underlying writer so
// a failed encode can be attributed to the stream or to the data.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// trackingReader is the read-side counterpart of trackingWriter.
// io.EOF is the normal end of a stream and is not recorded.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
