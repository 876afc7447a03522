// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/bureau-foundation/waypath/lib/codec"
	"github.com/bureau-foundation/waypath/lib/trail"
)

// Manifest is the CBOR sidecar stored next to each .path file. It lets
// the loader pick the right decoder and detect a stream that was
// modified or truncated behind the store's back.
type Manifest struct {
	Kind       trail.Kind `cbor:"kind"`
	Waypoints  int        `cbor:"waypoints"`
	Digest     Digest     `cbor:"digest"`
	RecordedAt int64      `cbor:"recorded_at"` // unix milliseconds
}

// ReadManifest returns the manifest for name. ok is false when no
// manifest exists, which is the case for files written by hand or by
// older tools.
func (s *Store) ReadManifest(name string) (manifest Manifest, ok bool, err error) {
	if err := trail.ValidateName(name); err != nil {
		return Manifest{}, false, err
	}
	data, err := os.ReadFile(s.manifestFileName(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, &IOError{Op: "read", Name: name, Err: err}
	}
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, false, fmt.Errorf("decoding manifest for path %q: %w", name, err)
	}
	return manifest, true, nil
}

func (s *Store) writeManifest(name string, manifest Manifest) error {
	data, err := codec.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest for path %q: %w", name, err)
	}
	return s.writeFileAtomic(name, s.manifestFileName(name), func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return &IOError{Op: "write", Name: name, Err: err}
		}
		return nil
	}, nil)
}
