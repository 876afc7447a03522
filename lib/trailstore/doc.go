// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trailstore persists recorded paths as files in one
// directory.
//
// Each path named N lives in two files:
//
//   - N.path -- the waypoint stream in the path kind's encoding (for
//     movement paths, back-to-back waypoint records with no header or
//     footer; see package waypoint).
//   - N.meta -- an optional CBOR [Manifest] recording the kind, the
//     waypoint count, a BLAKE3 digest of the .path bytes, and when the
//     path was recorded. Files without a manifest load as movement
//     paths with no integrity check.
//
// [Store.OpenForRead] and [Store.OpenForWrite] are the scoped stream
// primitives: the caller's function receives a buffered stream and the
// store closes it on every exit path, including errors from the
// function. Writes are atomic (temporary file, fsync, rename, fsync of
// the directory) so a crash or a failed encode never leaves a partial
// .path behind.
//
// [Store.Save], [Store.Load], and [Store.LoadAll] layer the path
// semantics on top. LoadAll is the startup sweep: every loadable path
// is registered, every broken one is logged and skipped.
//
// A Store holds an exclusive advisory lock on the directory for its
// lifetime so two processes never write the same path files.
package trailstore
