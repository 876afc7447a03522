// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the one CBOR configuration every waypath package
// uses for its internal files.
//
// The waypoint stream itself is a fixed binary layout (package
// waypoint); CBOR is for the metadata around it: the per-path manifest
// sidecar written by trailstore and the body of trailarchive bundles.
// Centralizing the modes keeps every writer byte-for-byte
// deterministic (RFC 8949 Core Deterministic Encoding: sorted map keys,
// shortest integers, definite lengths), so the same manifest always
// hashes the same.
//
// Types serialized here use `cbor` struct tags. Types that implement
// encoding.TextMarshaler, such as trail.Kind, encode as CBOR text
// strings.
package codec
