// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/testutil"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// scriptedSource replays a fixed list of poses and reports offline
// once they run out.
type scriptedSource struct {
	mu    sync.Mutex
	poses []waypoint.Waypoint
	next  int
	// hold keeps returning the last pose instead of going offline.
	hold bool
}

func (s *scriptedSource) ID() string { return "recorder-test-actor" }

func (s *scriptedSource) Pose() (waypoint.Waypoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.poses) {
		if s.hold && len(s.poses) > 0 {
			return s.poses[len(s.poses)-1], true
		}
		return waypoint.Waypoint{}, false
	}
	pose := s.poses[s.next]
	s.next++
	return pose, true
}

type memoryPersister struct {
	mu    sync.Mutex
	saved []*trail.Path
	err   error
}

func (p *memoryPersister) Save(path *trail.Path) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, path)
	return nil
}

func (p *memoryPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

func at(x, y, z float64) waypoint.Waypoint {
	return waypoint.Waypoint{WorldID: "world", X: x, Y: y, Z: z}
}

func newSession(t *testing.T, source *scriptedSource, persister *memoryPersister, registry *trail.Registry, maxLength int) *Session {
	t.Helper()
	session, err := New(Config{
		Name:      "patrol",
		Source:    source,
		MaxLength: maxLength,
		Persister: persister,
		Publisher: registry,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return session
}

func TestRecordingFiltersJitter(t *testing.T) {
	source := &scriptedSource{poses: []waypoint.Waypoint{
		at(0, 64, 0),
		at(0, 64, 0.005),
		at(2, 64, 0),
	}}
	persister := &memoryPersister{}
	registry := trail.NewRegistry()
	scheduler := schedule.NewManual()

	session := newSession(t, source, persister, registry, 500)
	if err := session.Start(scheduler, 50*time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.State() != StateRecording {
		t.Fatalf("State after Start = %s", session.State())
	}

	scheduler.StepN(3)
	if session.Len() != 2 {
		t.Fatalf("buffer holds %d waypoints after 3 samples, want 2", session.Len())
	}

	// The fourth tick finds the source offline.
	scheduler.Step()
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout, "session completion")

	result := session.Result()
	if result.Reason != ReasonSourceOffline {
		t.Errorf("Reason = %s, want source_offline", result.Reason)
	}
	if result.Err != nil || !result.Registered {
		t.Fatalf("Result = %+v", result)
	}
	if persister.count() != 1 {
		t.Fatalf("saved %d paths, want 1", persister.count())
	}

	path, err := registry.Find("patrol")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path.Len() != 2 {
		t.Fatalf("registered path has %d waypoints, want 2", path.Len())
	}
	if !path.At(1).Equal(at(2, 64, 0)) {
		t.Errorf("second waypoint = %v", path.At(1))
	}
	if scheduler.Active() != 0 {
		t.Errorf("%d scheduled handles remain after completion", scheduler.Active())
	}
}

func TestConsecutiveWaypointsExceedThreshold(t *testing.T) {
	var poses []waypoint.Waypoint
	for i := range 200 {
		// Alternate large and sub-threshold moves.
		step := 0.003
		if i%3 == 0 {
			step = 0.5
		}
		x := 0.0
		if len(poses) > 0 {
			x = poses[len(poses)-1].X
		}
		poses = append(poses, at(x+step, 64, 0))
	}
	source := &scriptedSource{poses: poses}
	registry := trail.NewRegistry()
	session := newSession(t, source, &memoryPersister{}, registry, 1000)

	scheduler := schedule.NewManual()
	session.Start(scheduler, time.Millisecond)
	scheduler.StepN(len(poses) + 1)
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout)

	path, err := registry.Find("patrol")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	points := path.Waypoints()
	for i := 1; i < len(points); i++ {
		if distance := points[i-1].ManhattanDistance(points[i]); distance <= DefaultMinStep {
			t.Fatalf("waypoints %d and %d are %v apart, want > %v", i-1, i, distance, DefaultMinStep)
		}
	}
}

func TestNegativeMinStepKeepsRepeats(t *testing.T) {
	source := &scriptedSource{poses: []waypoint.Waypoint{
		at(1, 64, 1),
		at(1, 64, 1),
		at(1, 64, 1),
	}}
	scheduler := schedule.NewManual()

	session, err := New(Config{
		Name:      "standing",
		Source:    source,
		MaxLength: 500,
		MinStep:   -1,
		Persister: &memoryPersister{},
		Publisher: trail.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := session.Start(scheduler, 50*time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}

	scheduler.StepN(3)
	if session.Len() != 3 {
		t.Errorf("buffer holds %d waypoints after 3 identical samples, want 3", session.Len())
	}
	session.Stop()
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout)
}

func TestCapacityFinalizes(t *testing.T) {
	source := &scriptedSource{poses: []waypoint.Waypoint{
		at(0, 0, 0), at(1, 0, 0), at(2, 0, 0), at(3, 0, 0), at(4, 0, 0),
	}}
	persister := &memoryPersister{}
	registry := trail.NewRegistry()
	session := newSession(t, source, persister, registry, 3)

	scheduler := schedule.NewManual()
	session.Start(scheduler, time.Millisecond)
	scheduler.StepN(3)
	if session.State() != StateRecording {
		t.Fatalf("State after filling the buffer = %s, want recording until the next tick", session.State())
	}
	scheduler.Step()
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout)

	result := session.Result()
	if result.Reason != ReasonCapacity || result.Waypoints != 3 {
		t.Errorf("Result = %+v, want capacity with 3 waypoints", result)
	}
	path, err := registry.Find("patrol")
	if err != nil || path.Len() != 3 {
		t.Fatalf("Find = %v, %v", path, err)
	}
}

func TestEmptyRecordingPersistsNothing(t *testing.T) {
	source := &scriptedSource{}
	persister := &memoryPersister{}
	registry := trail.NewRegistry()
	session := newSession(t, source, persister, registry, 10)

	scheduler := schedule.NewManual()
	session.Start(scheduler, time.Millisecond)
	scheduler.Step()
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout)

	if persister.count() != 0 {
		t.Errorf("saved %d paths for an empty recording", persister.count())
	}
	if registry.Len() != 0 {
		t.Errorf("registered %d paths for an empty recording", registry.Len())
	}
	if result := session.Result(); result.Path != nil || result.Err != nil {
		t.Errorf("Result = %+v", result)
	}
}

func TestSaveFailureStillCompletes(t *testing.T) {
	source := &scriptedSource{poses: []waypoint.Waypoint{at(0, 0, 0), at(5, 0, 0)}}
	saveErr := errors.New("disk full")
	persister := &memoryPersister{err: saveErr}
	registry := trail.NewRegistry()
	session := newSession(t, source, persister, registry, 10)

	scheduler := schedule.NewManual()
	session.Start(scheduler, time.Millisecond)
	scheduler.StepN(3)
	testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout)

	if session.State() != StateComplete {
		t.Errorf("State = %s, want complete", session.State())
	}
	result := session.Result()
	if !errors.Is(result.Err, saveErr) {
		t.Errorf("Result.Err = %v, want %v", result.Err, saveErr)
	}
	if result.Path != nil || result.Registered {
		t.Errorf("failed save produced Path=%v Registered=%v", result.Path, result.Registered)
	}
	if _, err := registry.Find("patrol"); !errors.Is(err, trail.ErrNotFound) {
		t.Errorf("Find after failed save = %v, want ErrNotFound", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	source := &scriptedSource{poses: []waypoint.Waypoint{at(0, 0, 0)}, hold: true}
	persister := &memoryPersister{}
	registry := trail.NewRegistry()
	var completions atomic.Int32
	session, err := New(Config{
		Name:       "patrol",
		Source:     source,
		MaxLength:  10,
		Persister:  persister,
		Publisher:  registry,
		OnComplete: func(*Session) { completions.Add(1) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scheduler := schedule.NewManual()
	session.Start(scheduler, time.Millisecond)
	scheduler.Step()

	session.Stop()
	session.Stop()
	scheduler.Step()

	if session.Result().Reason != ReasonStopped {
		t.Errorf("Reason = %s, want stopped", session.Result().Reason)
	}
	if persister.count() != 1 {
		t.Errorf("saved %d times, want 1", persister.count())
	}
	if completions.Load() != 1 {
		t.Errorf("OnComplete ran %d times, want 1", completions.Load())
	}
	if err := session.Start(scheduler, time.Millisecond); err == nil {
		t.Error("Start succeeded on a completed session")
	}
}

func TestStopRacingTickFinalizesOnce(t *testing.T) {
	for iteration := range 200 {
		source := &scriptedSource{poses: []waypoint.Waypoint{at(0, 0, 0), at(1, 0, 0)}, hold: true}
		persister := &memoryPersister{}
		registry := trail.NewRegistry()
		session := newSession(t, source, persister, registry, 100)

		scheduler := schedule.NewManual()
		session.Start(scheduler, time.Millisecond)
		scheduler.StepN(2)

		var waitGroup sync.WaitGroup
		waitGroup.Add(2)
		go func() {
			defer waitGroup.Done()
			session.Stop()
		}()
		go func() {
			defer waitGroup.Done()
			session.Tick()
		}()
		waitGroup.Wait()
		testutil.RequireClosed(t, session.Done(), testutil.DefaultTimeout, "iteration %d", iteration)

		if persister.count() != 1 {
			t.Fatalf("iteration %d: saved %d times, want 1", iteration, persister.count())
		}
		if registry.Len() != 1 {
			t.Fatalf("iteration %d: registry holds %d paths, want 1", iteration, registry.Len())
		}
	}
}

func TestWaitHonorsContext(t *testing.T) {
	source := &scriptedSource{hold: true, poses: []waypoint.Waypoint{at(0, 0, 0)}}
	session := newSession(t, source, &memoryPersister{}, trail.NewRegistry(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := session.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}

	session.Stop()
	result, err := session.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait after Stop: %v", err)
	}
	if result.Reason != ReasonStopped || result.Waypoints != 0 {
		t.Errorf("Result = %+v", result)
	}
}

func TestNewValidates(t *testing.T) {
	valid := Config{
		Name:      "patrol",
		Source:    &scriptedSource{},
		MaxLength: 1,
		Persister: &memoryPersister{},
		Publisher: trail.NewRegistry(),
	}

	cases := map[string]func(*Config){
		"bad name":      func(c *Config) { c.Name = "../x" },
		"no source":     func(c *Config) { c.Source = nil },
		"zero capacity": func(c *Config) { c.MaxLength = 0 },
		"no persister":  func(c *Config) { c.Persister = nil },
		"no publisher":  func(c *Config) { c.Publisher = nil },
		"unknown kind":  func(c *Config) { c.Kind = trail.Kind(9) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New accepted an invalid config")
			}
		})
	}

	session, err := New(valid)
	if err != nil {
		t.Fatalf("New(valid): %v", err)
	}
	if session.Kind() != trail.KindMovement {
		t.Errorf("default Kind = %v", session.Kind())
	}
}
