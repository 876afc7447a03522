// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trail defines named, recorded paths and the registry that
// publishes them.
//
// A [Path] is a name, a [Kind], and an ordered list of waypoints. Paths
// are immutable once constructed: the recorder builds the waypoint
// buffer, [New] copies it, and from then on any number of replay
// cursors may read the same Path concurrently without locking.
//
// [Kind] is a closed enum. Each kind owns its stored encoding
// ([Kind.Encode], [Kind.Decode]); today the only kind is
// [KindMovement], whose encoding is the bare waypoint stream from
// package waypoint.
//
// [Registry] maps path names to paths. Registration is first writer
// wins: registering a second path under an existing name is a no-op
// and the original stays published, so cursors already walking it are
// never pulled out from under.
//
// Key exports:
//
//   - [Path], [New] -- the immutable path value
//   - [Kind], [ParseKind] -- path kinds and their codecs
//   - [Registry], [NewRegistry] -- concurrent name to path mapping
//   - [ErrNotFound], [ErrInvalidBinding], [ErrInvalidName] -- sentinel errors
package trail
