// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package waypoint

import (
	"math"
	"testing"
)

func TestManhattanDistance(t *testing.T) {
	a := Waypoint{WorldID: "a", X: 1, Y: 64, Z: -2}
	b := Waypoint{WorldID: "b", X: -1, Y: 65.5, Z: 0}
	if got := a.ManhattanDistance(b); got != 5.5 {
		t.Errorf("ManhattanDistance = %v, want 5.5", got)
	}
	if got := b.ManhattanDistance(a); got != 5.5 {
		t.Errorf("ManhattanDistance is not symmetric: %v", got)
	}
}

func TestOrientation(t *testing.T) {
	tests := []struct {
		name      string
		direction Vector
		yaw       float32
		pitch     float32
	}{
		{"south", Vector{Z: 1}, 0, 0},
		{"west", Vector{X: -1}, 90, 0},
		{"north", Vector{Z: -1}, 180, 0},
		{"east", Vector{X: 1}, 270, 0},
		{"up and south", Vector{Y: 1, Z: 1}, 0, -45},
		{"down and south", Vector{Y: -1, Z: 1}, 0, 45},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			yaw, pitch, ok := test.direction.Orientation()
			if !ok {
				t.Fatal("Orientation reported no horizontal component")
			}
			if math.Abs(float64(yaw-test.yaw)) > 1e-4 {
				t.Errorf("yaw = %v, want %v", yaw, test.yaw)
			}
			if math.Abs(float64(pitch-test.pitch)) > 1e-4 {
				t.Errorf("pitch = %v, want %v", pitch, test.pitch)
			}
		})
	}
}

func TestOrientationVertical(t *testing.T) {
	if _, _, ok := (Vector{Y: 3}).Orientation(); ok {
		t.Error("Orientation of a vertical vector reported ok")
	}
	if _, _, ok := (Vector{}).Orientation(); ok {
		t.Error("Orientation of the zero vector reported ok")
	}
}

func TestVectorArithmetic(t *testing.T) {
	v := Vector{X: 1, Y: 2, Z: 3}
	w := Vector{X: -1, Y: 0, Z: -1}

	if got := v.Multiply(w); got != (Vector{X: -1, Y: 0, Z: -3}) {
		t.Errorf("Multiply = %v", got)
	}
	if got := v.Subtract(w); got != (Vector{X: 2, Y: 2, Z: 4}) {
		t.Errorf("Subtract = %v", got)
	}
	if got := v.Add(w); got != (Vector{X: 0, Y: 2, Z: 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := (Vector{X: 3, Z: 4}).Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
}
