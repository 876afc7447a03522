// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trailarchive bundles many paths into one file for moving
// them between servers.
//
// An archive is a 14-byte header followed by a body:
//
//	magic "WPAR" | version (1) | compression | uncompressed size (u32 BE) | body size (u32 BE)
//
// The body is a CBOR map holding, for each path, its name, kind,
// waypoint records in the .path stream format, and the BLAKE3 digest
// of those records. The body is compressed with zstd or LZ4, or
// stored as-is when compression does not help.
package trailarchive
