// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package actor declares the world-side collaborators the path
// subsystem talks to. The host game implements these; waypath never
// creates, owns, or destroys an actor.
package actor

import "github.com/bureau-foundation/waypath/lib/waypoint"

// Source is an actor whose movement can be recorded.
type Source interface {
	// ID identifies the actor. At most one recording session runs
	// per ID.
	ID() string

	// Pose returns the actor's current pose. online is false once the
	// actor has left the world, in which case the pose is ignored.
	Pose() (pose waypoint.Waypoint, online bool)
}

// Follower is an actor driven along a recorded path.
type Follower interface {
	ID() string

	// MoveTo places the follower at position, facing the given yaw
	// and pitch. facing is the raw direction vector the orientation
	// was derived from, for hosts that want it.
	MoveTo(position waypoint.Waypoint, facing waypoint.Vector)
}

// Directory resolves follower IDs to live followers. Replay bindings
// hold an ID and look the follower up on every tick, so a follower
// that is removed from the world simply stops resolving.
type Directory interface {
	Follower(id string) (Follower, bool)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(id string) (Follower, bool)

// Follower implements Directory.
func (f DirectoryFunc) Follower(id string) (Follower, bool) { return f(id) }
