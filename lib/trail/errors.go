// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import "errors"

var (
	// ErrNotFound reports a lookup for a path name nobody registered.
	ErrNotFound = errors.New("path not found")

	// ErrInvalidBinding reports an attempt to replay a path with fewer
	// than two waypoints. Such a path has nowhere to move a follower.
	ErrInvalidBinding = errors.New("path needs at least two waypoints to replay")

	// ErrInvalidName reports a path name that cannot be used as a file
	// name in the path directory.
	ErrInvalidName = errors.New("invalid path name")

	// ErrUnknownKind reports a path kind outside the closed set.
	ErrUnknownKind = errors.New("unknown path kind")
)
