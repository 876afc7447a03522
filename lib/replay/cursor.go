// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package replay

import (
	"fmt"

	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// Direction is the way a cursor walks its path.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Step is what one advance produces: where the follower goes and
// which way it faces.
type Step struct {
	// Index is the waypoint just reached.
	Index int

	// Position is the reached waypoint with Yaw and Pitch replaced by
	// the computed facing. When Facing has no horizontal component the
	// recorded orientation is kept.
	Position waypoint.Waypoint

	// Facing is the raw direction vector; see [Facing].
	Facing waypoint.Vector
}

// Cursor walks a path back and forth, one waypoint per Advance. It
// starts at index 0 moving forward. A Cursor is not safe for
// concurrent use; each follower owns its own.
type Cursor struct {
	path      *trail.Path
	index     int
	direction Direction
}

// NewCursor returns a cursor over path. Returns an error wrapping
// trail.ErrInvalidBinding when the path has fewer than two waypoints.
func NewCursor(path *trail.Path) (*Cursor, error) {
	if !path.Replayable() {
		return nil, fmt.Errorf("path %q has %d waypoints: %w", path.Name(), path.Len(), trail.ErrInvalidBinding)
	}
	return &Cursor{path: path, direction: Forward}, nil
}

// Path returns the path being walked.
func (c *Cursor) Path() *trail.Path { return c.path }

// Index returns the index of the waypoint last reached.
func (c *Cursor) Index() int { return c.index }

// Direction returns the direction the next Advance will move in.
func (c *Cursor) Direction() Direction { return c.direction }

// Advance moves one waypoint in the current direction and returns the
// resulting step. Reaching either end forces the direction toward the
// other end, so the visited indices form a triangle wave between 0 and
// Len-1.
func (c *Cursor) Advance() Step {
	next := c.offset(c.index)
	c.index = next
	reached := c.path.At(next)

	if next <= 0 {
		c.direction = Forward
	}
	if next >= c.path.Len()-1 {
		c.direction = Backward
	}

	upcoming := c.path.At(c.offset(next))
	facing := Facing(reached, upcoming)

	position := reached
	if yaw, pitch, ok := facing.Orientation(); ok {
		position.Yaw = yaw
		position.Pitch = pitch
	}
	return Step{Index: next, Position: position, Facing: facing}
}

func (c *Cursor) offset(index int) int {
	if c.direction == Forward {
		return index + 1
	}
	return index - 1
}

// Facing returns the direction a follower standing at current faces
// while heading for upcoming. The target is upcoming lifted or lowered
// to current's height, so the look vector is horizontal. The vector
// current-target is then multiplied by (-1, 0, -1), which reverses it
// and leaves it pointing from current toward upcoming.
//
// The multiply is kept exactly as paths have always been replayed.
// Whether the double negation reflects an intended coordinate
// correction is an open product question.
func Facing(current, upcoming waypoint.Waypoint) waypoint.Vector {
	target := upcoming.Position().Add(waypoint.Vector{Y: current.Y - upcoming.Y})
	look := current.Position().Subtract(target)
	return look.Multiply(waypoint.Vector{X: -1, Y: 0, Z: -1})
}
