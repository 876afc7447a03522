// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package waypoint defines the recorded pose of an actor and its
// binary encoding.
//
// A [Waypoint] is a value: the world the actor stood in, its x/y/z
// position, and its yaw/pitch. Recorded paths are ordered sequences of
// waypoints written back-to-back with no header, footer, separator, or
// record count. Each record is laid out as:
//
//	uint16  world id length in bytes (big-endian)
//	[]byte  world id, UTF-8
//	float64 x      (IEEE-754, big-endian)
//	float64 y
//	float64 z
//	float32 yaw
//	float32 pitch
//
// The end of a sequence is the end of the underlying stream. [Decode]
// returns io.EOF when the stream ends cleanly on a record boundary and
// an error wrapping [ErrMalformedRecord] when it ends partway through
// a record. Consumers loop on [Reader.Next] until io.EOF.
//
// [Vector] carries the small amount of 3D arithmetic the replay layer
// needs (component-wise multiply, subtraction, yaw/pitch derivation).
//
// This package depends on no other waypath packages.
package waypoint
