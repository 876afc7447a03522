// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trail

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// MaxNameLength bounds path names so that "<name>.path" stays a
// reasonable file name on every filesystem we run on.
const MaxNameLength = 64

// Path is a named, ordered, immutable sequence of waypoints.
//
// All fields are unexported and every accessor returns copies, so a
// *Path can be shared between goroutines without synchronization.
type Path struct {
	name      string
	kind      Kind
	waypoints []waypoint.Waypoint
}

// New validates name and kind and returns a Path holding a copy of
// points. An empty points slice is allowed; such a path exists but
// cannot be replayed.
func New(name string, kind Kind, points []waypoint.Waypoint) (*Path, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("path %q: %w: %d", name, ErrUnknownKind, uint8(kind))
	}

	owned := make([]waypoint.Waypoint, len(points))
	copy(owned, points)
	return &Path{name: name, kind: kind, waypoints: owned}, nil
}

// Name returns the registry key of the path.
func (p *Path) Name() string { return p.name }

// Kind returns the kind the path was recorded as.
func (p *Path) Kind() Kind { return p.kind }

// Len returns the number of waypoints.
func (p *Path) Len() int { return len(p.waypoints) }

// At returns the waypoint at index i. Panics when i is out of range,
// like slice indexing.
func (p *Path) At(i int) waypoint.Waypoint { return p.waypoints[i] }

// Waypoints returns a copy of the waypoint list in recording order.
func (p *Path) Waypoints() []waypoint.Waypoint {
	points := make([]waypoint.Waypoint, len(p.waypoints))
	copy(points, p.waypoints)
	return points
}

// Replayable reports whether the path has enough waypoints to move a
// follower.
func (p *Path) Replayable() bool { return len(p.waypoints) >= 2 }

// ValidateName checks that name can serve both as a registry key and
// as the stem of a file name: non-empty, at most [MaxNameLength]
// bytes, no path separators, no leading dot, no control characters.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrInvalidName, name, len(name), MaxNameLength)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains a control character", ErrInvalidName, name)
		}
	}
	return nil
}
