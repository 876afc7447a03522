// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package replay drives followers along recorded paths.
//
// A [Cursor] is the pure state machine: an index and a direction over
// an immutable path, advanced one waypoint at a time, bouncing at both
// ends. A [Binding] attaches a cursor to a follower and a scheduler.
// It holds the follower's ID rather than the follower itself and
// resolves it through an [actor.Directory] on every tick, so the host
// stays the follower's only owner. A tick whose lookup misses unbinds
// the binding.
//
// Many cursors may walk the same path at once; paths are never
// mutated after registration, so no locking is needed between them.
package replay
