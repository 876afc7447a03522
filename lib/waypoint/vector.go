// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waypoint

import "math"

// Vector is a 3D vector in world coordinates. Y is up.
type Vector struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Subtract returns v - other.
func (v Vector) Subtract(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Multiply returns the component-wise product of v and other.
func (v Vector) Multiply(other Vector) Vector {
	return Vector{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}
}

// Length returns the Euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Orientation converts a direction into yaw and pitch in degrees,
// using the convention where yaw 0 faces +Z, yaw 90 faces -X, and
// negative pitch looks up. Yaw is normalized to [0, 360).
//
// ok is false when v has no horizontal component, in which case yaw
// is undefined and both results are zero.
func (v Vector) Orientation() (yaw, pitch float32, ok bool) {
	horizontal := math.Hypot(v.X, v.Z)
	if horizontal == 0 {
		return 0, 0, false
	}

	theta := math.Atan2(-v.X, v.Z)
	yawDegrees := math.Mod(theta+2*math.Pi, 2*math.Pi) * 180 / math.Pi
	pitchDegrees := math.Atan(-v.Y/horizontal) * 180 / math.Pi
	return float32(yawDegrees), float32(pitchDegrees), true
}
