// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package replay

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

func linePath(t *testing.T, name string, length int) *trail.Path {
	t.Helper()
	points := make([]waypoint.Waypoint, length)
	for i := range points {
		points[i] = waypoint.Waypoint{WorldID: "world", X: float64(i), Y: 64, Z: 0, Yaw: 45, Pitch: 10}
	}
	path, err := trail.New(name, trail.KindMovement, points)
	if err != nil {
		t.Fatalf("trail.New: %v", err)
	}
	return path
}

func TestCursorTwoWaypointsAlternates(t *testing.T) {
	cursor, err := NewCursor(linePath(t, "pair", 2))
	if err != nil {
		t.Fatalf("NewCursor: %v", err)
	}
	want := []int{1, 0, 1, 0, 1, 0}
	for i, expected := range want {
		if step := cursor.Advance(); step.Index != expected {
			t.Fatalf("advance %d reached index %d, want %d", i, step.Index, expected)
		}
	}
}

func TestCursorTriangleWave(t *testing.T) {
	for _, length := range []int{2, 3, 4, 7} {
		cursor, err := NewCursor(linePath(t, "line", length))
		if err != nil {
			t.Fatalf("NewCursor: %v", err)
		}

		previous := 0
		touchedEnd, touchedStart := false, false
		for i := range 5 * length {
			step := cursor.Advance()
			if step.Index < 0 || step.Index > length-1 {
				t.Fatalf("length %d advance %d: index %d out of range", length, i, step.Index)
			}
			if delta := step.Index - previous; delta != 1 && delta != -1 {
				t.Fatalf("length %d advance %d: moved from %d to %d", length, i, previous, step.Index)
			}
			if step.Index == length-1 {
				touchedEnd = true
			}
			if step.Index == 0 {
				touchedStart = true
			}
			previous = step.Index
		}
		if !touchedEnd || !touchedStart {
			t.Errorf("length %d: touched start=%v end=%v", length, touchedStart, touchedEnd)
		}
	}
}

func TestCursorDirectionAtEnds(t *testing.T) {
	cursor, _ := NewCursor(linePath(t, "line", 3))
	if cursor.Direction() != Forward || cursor.Index() != 0 {
		t.Fatalf("initial cursor at %d moving %s", cursor.Index(), cursor.Direction())
	}
	cursor.Advance() // 1
	cursor.Advance() // 2
	if cursor.Direction() != Backward {
		t.Errorf("direction at the last waypoint = %s, want backward", cursor.Direction())
	}
	cursor.Advance() // 1
	cursor.Advance() // 0
	if cursor.Direction() != Forward {
		t.Errorf("direction at the first waypoint = %s, want forward", cursor.Direction())
	}
}

func TestNewCursorRejectsShortPaths(t *testing.T) {
	for _, length := range []int{0, 1} {
		if _, err := NewCursor(linePath(t, "short", length)); !errors.Is(err, trail.ErrInvalidBinding) {
			t.Errorf("length %d: NewCursor = %v, want ErrInvalidBinding", length, err)
		}
	}
}

func TestFacingIgnoresElevation(t *testing.T) {
	current := waypoint.Waypoint{X: 0, Y: 64, Z: 0}
	upcoming := waypoint.Waypoint{X: 2, Y: 70, Z: 0}

	facing := Facing(current, upcoming)
	if facing.X != 2 || facing.Y != 0 || facing.Z != 0 {
		t.Fatalf("Facing = %+v, want (2, 0, 0)", facing)
	}

	yaw, pitch, ok := facing.Orientation()
	if !ok || yaw != 270 || pitch != 0 {
		t.Errorf("Orientation = %v, %v, %v; want 270, 0, true", yaw, pitch, ok)
	}
}

func TestStepCarriesComputedOrientation(t *testing.T) {
	cursor, _ := NewCursor(linePath(t, "line", 3))
	step := cursor.Advance()

	if step.Position.X != 1 || step.Position.Y != 64 {
		t.Errorf("Position = %v, want the reached waypoint", step.Position)
	}
	// Heading for index 2, which lies along +X.
	if step.Position.Yaw != 270 || step.Position.Pitch != 0 {
		t.Errorf("Position orientation = %v/%v, want 270/0", step.Position.Yaw, step.Position.Pitch)
	}
}

func TestStepKeepsRecordedOrientationWhenStacked(t *testing.T) {
	path, err := trail.New("stack", trail.KindMovement, []waypoint.Waypoint{
		{WorldID: "world", X: 5, Y: 60, Z: 5, Yaw: 12, Pitch: 3},
		{WorldID: "world", X: 5, Y: 70, Z: 5, Yaw: 34, Pitch: 4},
	})
	if err != nil {
		t.Fatalf("trail.New: %v", err)
	}
	cursor, _ := NewCursor(path)
	step := cursor.Advance()
	if step.Position.Yaw != 34 || step.Position.Pitch != 4 {
		t.Errorf("orientation = %v/%v, want the recorded 34/4", step.Position.Yaw, step.Position.Pitch)
	}
}

type recordingFollower struct {
	id string

	mu        sync.Mutex
	positions []waypoint.Waypoint
}

func (f *recordingFollower) ID() string { return f.id }

func (f *recordingFollower) MoveTo(position waypoint.Waypoint, _ waypoint.Vector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positions = append(f.positions, position)
}

func (f *recordingFollower) moves() []waypoint.Waypoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]waypoint.Waypoint(nil), f.positions...)
}

// world is a mutable follower directory.
type world struct {
	mu        sync.Mutex
	followers map[string]actor.Follower
}

func newWorld(followers ...actor.Follower) *world {
	w := &world{followers: make(map[string]actor.Follower)}
	for _, follower := range followers {
		w.followers[follower.ID()] = follower
	}
	return w
}

func (w *world) Follower(id string) (actor.Follower, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	follower, ok := w.followers[id]
	return follower, ok
}

func (w *world) remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.followers, id)
}

func TestBindingMovesFollower(t *testing.T) {
	follower := &recordingFollower{id: "guard"}
	binding, err := NewBinding(BindingConfig{
		Path:       linePath(t, "line", 2),
		FollowerID: "guard",
		Directory:  newWorld(follower),
	})
	if err != nil {
		t.Fatalf("NewBinding: %v", err)
	}

	scheduler := schedule.NewManual()
	if err := binding.Start(scheduler, 50*time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	scheduler.StepN(4)

	moves := follower.moves()
	if len(moves) != 4 {
		t.Fatalf("follower moved %d times, want 4", len(moves))
	}
	for i, expectedX := range []float64{1, 0, 1, 0} {
		if moves[i].X != expectedX {
			t.Errorf("move %d to x=%v, want %v", i, moves[i].X, expectedX)
		}
	}
	if binding.Steps() != 4 || binding.Index() != 0 {
		t.Errorf("Steps = %d Index = %d", binding.Steps(), binding.Index())
	}
}

func TestBindingUnbindsWhenFollowerVanishes(t *testing.T) {
	follower := &recordingFollower{id: "guard"}
	directory := newWorld(follower)

	unbound := 0
	binding, err := NewBinding(BindingConfig{
		Path:       linePath(t, "line", 3),
		FollowerID: "guard",
		Directory:  directory,
		OnUnbind:   func(*Binding) { unbound++ },
	})
	if err != nil {
		t.Fatalf("NewBinding: %v", err)
	}
	scheduler := schedule.NewManual()
	binding.Start(scheduler, time.Millisecond)
	scheduler.Step()

	directory.remove("guard")
	scheduler.Step()
	scheduler.Step()

	if binding.Bound() {
		t.Error("binding still bound after its follower vanished")
	}
	if unbound != 1 {
		t.Errorf("OnUnbind ran %d times, want 1", unbound)
	}
	if scheduler.Active() != 0 {
		t.Errorf("%d handles still scheduled", scheduler.Active())
	}
	if len(follower.moves()) != 1 {
		t.Errorf("follower moved %d times, want 1", len(follower.moves()))
	}
}

func TestUnbindIsIdempotent(t *testing.T) {
	follower := &recordingFollower{id: "guard"}
	unbound := 0
	binding, _ := NewBinding(BindingConfig{
		Path:       linePath(t, "line", 2),
		FollowerID: "guard",
		Directory:  newWorld(follower),
		OnUnbind:   func(*Binding) { unbound++ },
	})
	scheduler := schedule.NewManual()
	binding.Start(scheduler, time.Millisecond)

	binding.Unbind()
	binding.Unbind()
	scheduler.Step()

	if unbound != 1 {
		t.Errorf("OnUnbind ran %d times, want 1", unbound)
	}
	if len(follower.moves()) != 0 {
		t.Errorf("follower moved after Unbind")
	}
	if err := binding.Start(scheduler, time.Millisecond); err == nil {
		t.Error("Start succeeded after Unbind")
	}
}

func TestNewBindingRejectsShortPath(t *testing.T) {
	_, err := NewBinding(BindingConfig{
		Path:       linePath(t, "single", 1),
		FollowerID: "guard",
		Directory:  newWorld(),
	})
	if !errors.Is(err, trail.ErrInvalidBinding) {
		t.Fatalf("NewBinding = %v, want ErrInvalidBinding", err)
	}
}

func TestCursorsShareOnePath(t *testing.T) {
	path := linePath(t, "shared", 5)
	var waitGroup sync.WaitGroup
	for range 8 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			cursor, err := NewCursor(path)
			if err != nil {
				t.Errorf("NewCursor: %v", err)
				return
			}
			for range 100 {
				cursor.Advance()
			}
		}()
	}
	waitGroup.Wait()
}
