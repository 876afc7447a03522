// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"fmt"

	"github.com/bureau-foundation/waypath/lib/trail"
)

// State is a session's lifecycle position.
type State uint8

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Reason says why a session ended.
type Reason uint8

const (
	ReasonNone Reason = iota

	// ReasonStopped: Stop was called.
	ReasonStopped

	// ReasonSourceOffline: the source actor left the world.
	ReasonSourceOffline

	// ReasonCapacity: the buffer reached MaxLength.
	ReasonCapacity
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonStopped:
		return "stopped"
	case ReasonSourceOffline:
		return "source_offline"
	case ReasonCapacity:
		return "capacity"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Result is the outcome of a completed session.
type Result struct {
	Reason Reason

	// Waypoints is the number of waypoints recorded.
	Waypoints int

	// Path is the saved path. Nil when nothing was recorded or the
	// save failed.
	Path *trail.Path

	// Registered is true when Path was published under its name. It
	// is false when a path with the same name was already registered.
	Registered bool

	// Err is the save failure, if any.
	Err error
}
