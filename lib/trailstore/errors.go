// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailstore

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked reports that another Store already holds the directory.
	ErrLocked = errors.New("path directory is locked by another store")

	// ErrDigestMismatch reports a .path file whose bytes no longer match
	// the digest in its manifest.
	ErrDigestMismatch = errors.New("path contents do not match manifest digest")
)

// IOError reports a failure of the byte stream under a path: opening,
// writing, syncing, or renaming its file. It unwraps to the operating
// system error, so errors.Is(err, fs.ErrNotExist) works.
type IOError struct {
	// Op is the failed step: "open", "create", "write", "sync",
	// "close", "rename", "read", or "remove".
	Op string

	// Name is the path name, not the file name.
	Name string

	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s path %q: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
