// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waypoint

import (
	"fmt"
	"math"
)

// Waypoint is one sampled pose in a world.
type Waypoint struct {
	// WorldID names the world the pose was sampled in. It is carried
	// through storage and replay unchanged; this package never
	// interprets it.
	WorldID string

	X, Y, Z float64

	Yaw, Pitch float32
}

// Position returns the waypoint's coordinates as a vector.
func (w Waypoint) Position() Vector {
	return Vector{X: w.X, Y: w.Y, Z: w.Z}
}

// ManhattanDistance returns |Δx| + |Δy| + |Δz| between the two
// positions. World ids and orientation are ignored.
func (w Waypoint) ManhattanDistance(other Waypoint) float64 {
	return math.Abs(w.X-other.X) + math.Abs(w.Y-other.Y) + math.Abs(w.Z-other.Z)
}

// Equal reports whether both waypoints are identical field for field.
// Floating-point fields are compared by bit pattern, so a waypoint
// holding NaN equals itself and 0.0 differs from -0.0. This is the
// equality a lossless round trip through the codec preserves.
func (w Waypoint) Equal(other Waypoint) bool {
	return w.WorldID == other.WorldID &&
		math.Float64bits(w.X) == math.Float64bits(other.X) &&
		math.Float64bits(w.Y) == math.Float64bits(other.Y) &&
		math.Float64bits(w.Z) == math.Float64bits(other.Z) &&
		math.Float32bits(w.Yaw) == math.Float32bits(other.Yaw) &&
		math.Float32bits(w.Pitch) == math.Float32bits(other.Pitch)
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s(%.3f, %.3f, %.3f | yaw %.1f pitch %.1f)",
		w.WorldID, w.X, w.Y, w.Z, w.Yaw, w.Pitch)
}
