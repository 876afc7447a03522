// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"fmt"
	"io"

	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// Kind identifies what a path records and how it is stored. The set is
// closed; adding a kind means adding a case to every switch below and
// to the recorder and replay strategies.
type Kind uint8

const (
	// KindUnknown is the zero value. It is never valid on a Path.
	KindUnknown Kind = iota

	// KindMovement records an actor's position and facing over time
	// and replays it by bouncing a follower between the two ends.
	KindMovement
)

// String returns the stable lowercase name used in manifests and CLI
// output.
func (k Kind) String() string {
	switch k {
	case KindMovement:
		return "movement"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	return k == KindMovement
}

// ParseKind parses the name produced by [Kind.String]. The name is
// case-sensitive.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "movement":
		return KindMovement, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by
// name in CBOR and JSON.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Encode writes points to w in this kind's stored format.
func (k Kind) Encode(w io.Writer, points []waypoint.Waypoint) error {
	switch k {
	case KindMovement:
		return waypoint.WriteAll(w, points)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
}

// Decode reads a complete stored path of this kind from r, stopping at
// the end of the stream.
func (k Kind) Decode(r io.Reader) ([]waypoint.Waypoint, error) {
	switch k {
	case KindMovement:
		return waypoint.ReadAll(r)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
}
