// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// DefaultMinStep is the Manhattan distance a sample must exceed, from
// the last kept waypoint, to be recorded.
const DefaultMinStep = 0.01

// Persister saves a finished path. *trailstore.Store implements it.
type Persister interface {
	Save(path *trail.Path) error
}

// Publisher makes a finished path findable. *trail.Registry implements
// it.
type Publisher interface {
	Register(path *trail.Path) (registered *trail.Path, inserted bool)
}

// Config describes one recording session. Name, Source, MaxLength,
// Persister, and Publisher are required.
type Config struct {
	// Name is the path name the recording is saved and published
	// under.
	Name string

	// Kind defaults to trail.KindMovement.
	Kind trail.Kind

	Source actor.Source

	// MaxLength is the buffer capacity. Once the buffer holds this
	// many waypoints the next tick finalizes the session.
	MaxLength int

	// MinStep is the Manhattan threshold for keeping a sample. Zero
	// means DefaultMinStep. A negative value keeps every sample,
	// including exact repeats of the last one; a threshold of exactly
	// zero cannot be expressed.
	MinStep float64

	Persister Persister
	Publisher Publisher

	// OnComplete, if set, runs once after the session reaches
	// Complete, on the goroutine that finalized it.
	OnComplete func(*Session)

	// Logger receives lifecycle and failure records. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// Session is one recording. Create it with [New], start it with
// [Session.Start], and either let it end on its own or call
// [Session.Stop]. All methods are safe for concurrent use.
type Session struct {
	id         uuid.UUID
	name       string
	kind       trail.Kind
	source     actor.Source
	maxLength  int
	minStep    float64
	persister  Persister
	publisher  Publisher
	onComplete func(*Session)
	logger     *slog.Logger

	mu     sync.Mutex
	state  State
	buffer []waypoint.Waypoint
	handle schedule.Handle
	result Result

	done chan struct{}
}

// New validates cfg and returns an idle session.
func New(cfg Config) (*Session, error) {
	if err := trail.ValidateName(cfg.Name); err != nil {
		return nil, err
	}
	kind := cfg.Kind
	if kind == trail.KindUnknown {
		kind = trail.KindMovement
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("recorder: %w: %d", trail.ErrUnknownKind, uint8(kind))
	}
	if cfg.Source == nil {
		return nil, errors.New("recorder: Source is required")
	}
	if cfg.MaxLength <= 0 {
		return nil, fmt.Errorf("recorder: MaxLength must be positive, got %d", cfg.MaxLength)
	}
	if cfg.Persister == nil {
		return nil, errors.New("recorder: Persister is required")
	}
	if cfg.Publisher == nil {
		return nil, errors.New("recorder: Publisher is required")
	}

	minStep := cfg.MinStep
	if minStep == 0 {
		minStep = DefaultMinStep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	id := uuid.New()
	return &Session{
		id:         id,
		name:       cfg.Name,
		kind:       kind,
		source:     cfg.Source,
		maxLength:  cfg.MaxLength,
		minStep:    minStep,
		persister:  cfg.Persister,
		publisher:  cfg.Publisher,
		onComplete: cfg.OnComplete,
		logger: logger.With(
			"session", id.String(),
			"path", cfg.Name,
			"actor", cfg.Source.ID(),
		),
		state: StateIdle,
		done:  make(chan struct{}),
	}, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Name returns the path name being recorded.
func (s *Session) Name() string { return s.name }

// Kind returns the kind of path being recorded.
func (s *Session) Kind() trail.Kind { return s.kind }

// SourceID returns the ID of the actor being recorded.
func (s *Session) SourceID() string { return s.source.ID() }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of waypoints kept so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// Done is closed when the session reaches Complete.
func (s *Session) Done() <-chan struct{} { return s.done }

// Result returns the outcome. It is the zero Result until Done is
// closed.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Wait blocks until the session completes or ctx is done.
func (s *Session) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Start moves the session from Idle to Recording and asks scheduler
// to call [Session.Tick] every interval. Returns an error if the
// session was already started or stopped.
func (s *Session) Start(scheduler schedule.Scheduler, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("recorder: sampling interval must be positive, got %v", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("recorder: session %s cannot start from state %s", s.id, s.state)
	}
	s.state = StateRecording
	s.handle = scheduler.Every(interval, s.Tick)

	s.logger.Info("recording started",
		"interval", interval,
		"max_length", s.maxLength,
	)
	return nil
}

// Tick samples the source once. The scheduler calls it; tests may call
// it directly. Ticks outside the Recording state do nothing.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}

	pose, online := s.source.Pose()
	switch {
	case !online:
		s.finalizeUnlock(ReasonSourceOffline)
		return
	case len(s.buffer) >= s.maxLength:
		s.finalizeUnlock(ReasonCapacity)
		return
	}

	if len(s.buffer) == 0 || s.buffer[len(s.buffer)-1].ManhattanDistance(pose) > s.minStep {
		s.buffer = append(s.buffer, pose)
	}
	s.mu.Unlock()
}

// Stop ends the session. If it is recording, Stop finalizes it on the
// calling goroutine and returns once the session is Complete. If
// another goroutine is already finalizing, Stop returns immediately;
// use Done or Wait to observe completion. Stopping an idle session
// completes it without saving anything. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateRecording:
		s.finalizeUnlock(ReasonStopped)
	case StateIdle:
		s.state = StateComplete
		s.result = Result{Reason: ReasonStopped}
		s.mu.Unlock()
		s.complete()
	default:
		s.mu.Unlock()
	}
}

// finalizeUnlock must be called with s.mu held and the session in
// Recording. It claims the finalize step, releases the lock, and
// performs the save and publish without holding it.
func (s *Session) finalizeUnlock(reason Reason) {
	s.state = StateFinalizing
	if s.handle != nil {
		s.handle.Cancel()
	}
	buffer := s.buffer
	s.mu.Unlock()

	result := s.persist(reason, buffer)

	s.mu.Lock()
	s.state = StateComplete
	s.result = result
	s.mu.Unlock()

	s.complete()
}

// persist saves and publishes buffer. Failures are logged and carried
// in the result, never returned.
func (s *Session) persist(reason Reason, buffer []waypoint.Waypoint) Result {
	result := Result{Reason: reason, Waypoints: len(buffer)}

	if len(buffer) == 0 {
		s.logger.Info("recording ended with no waypoints, nothing saved", "reason", reason)
		return result
	}

	path, err := trail.New(s.name, s.kind, buffer)
	if err == nil {
		err = s.persister.Save(path)
	}
	if err != nil {
		s.logger.Error("recorded path could not be saved",
			"reason", reason,
			"waypoints", len(buffer),
			"error", err,
		)
		result.Err = err
		return result
	}

	result.Path = path
	if _, inserted := s.publisher.Register(path); inserted {
		result.Registered = true
	} else {
		s.logger.Warn("path name already registered, existing path kept until reload",
			"waypoints", len(buffer),
		)
	}

	s.logger.Info("recording saved",
		"reason", reason,
		"waypoints", len(buffer),
		"registered", result.Registered,
	)
	return result
}

func (s *Session) complete() {
	close(s.done)
	if s.onComplete != nil {
		s.onComplete(s)
	}
}
