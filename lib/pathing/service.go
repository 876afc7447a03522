// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pathing

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/recorder"
	"github.com/bureau-foundation/waypath/lib/replay"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
)

var (
	// ErrAlreadyRecording reports a StartRecording for an actor that
	// has a session in progress.
	ErrAlreadyRecording = errors.New("actor is already recording a path")

	// ErrNameRecording reports a StartRecording for a name another
	// actor is recording right now.
	ErrNameRecording = errors.New("path name is already being recorded")

	// ErrClosed reports a call on a Service after Close.
	ErrClosed = errors.New("path service is closed")
)

// Store is the persistence the service needs. *trailstore.Store
// implements it.
type Store interface {
	Save(path *trail.Path) error
	LoadAll(registry *trail.Registry) (int, error)
}

// Defaults applied by New to zero Config fields.
const (
	DefaultMaxPathLocations = 500
	DefaultSamplingInterval = 50 * time.Millisecond
	DefaultReplayInterval   = 50 * time.Millisecond
)

// Config wires a Service. Store, Registry, Scheduler, and Directory
// are required.
type Config struct {
	Store     Store
	Registry  *trail.Registry
	Scheduler schedule.Scheduler

	// Directory resolves follower IDs for replay bindings.
	Directory actor.Directory

	// MaxPathLocations caps each recording.
	MaxPathLocations int

	// SamplingInterval is the recorder tick period.
	SamplingInterval time.Duration

	// ReplayInterval is the replay tick period.
	ReplayInterval time.Duration

	// MinStep is the recorder's Manhattan threshold. Zero means
	// recorder.DefaultMinStep.
	MinStep float64

	Logger *slog.Logger
}

// Service is the entry point the command layer calls: it starts and
// stops recordings, looks paths up, and binds followers to paths. It
// owns the set of active sessions and bindings, at most one session
// per source actor and one binding per follower.
type Service struct {
	store            Store
	registry         *trail.Registry
	scheduler        schedule.Scheduler
	directory        actor.Directory
	maxPathLocations int
	samplingInterval time.Duration
	replayInterval   time.Duration
	minStep          float64
	logger           *slog.Logger

	mu       sync.Mutex
	closed   bool
	sessions map[string]*recorder.Session
	bindings map[string]*replay.Binding
}

// New validates cfg and returns a Service. It does not load any
// paths; call LoadAll for that.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("pathing: Store is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("pathing: Registry is required")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("pathing: Scheduler is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("pathing: Directory is required")
	}
	if cfg.MaxPathLocations < 0 {
		return nil, fmt.Errorf("pathing: MaxPathLocations must not be negative, got %d", cfg.MaxPathLocations)
	}
	if cfg.SamplingInterval < 0 || cfg.ReplayInterval < 0 {
		return nil, errors.New("pathing: intervals must not be negative")
	}

	service := &Service{
		store:            cfg.Store,
		registry:         cfg.Registry,
		scheduler:        cfg.Scheduler,
		directory:        cfg.Directory,
		maxPathLocations: cfg.MaxPathLocations,
		samplingInterval: cfg.SamplingInterval,
		replayInterval:   cfg.ReplayInterval,
		minStep:          cfg.MinStep,
		logger:           cfg.Logger,
		sessions:         make(map[string]*recorder.Session),
		bindings:         make(map[string]*replay.Binding),
	}
	if service.maxPathLocations == 0 {
		service.maxPathLocations = DefaultMaxPathLocations
	}
	if service.samplingInterval == 0 {
		service.samplingInterval = DefaultSamplingInterval
	}
	if service.replayInterval == 0 {
		service.replayInterval = DefaultReplayInterval
	}
	if service.logger == nil {
		service.logger = slog.New(slog.DiscardHandler)
	}
	return service, nil
}

// LoadAll loads every stored path into the registry. See
// trailstore.Store.LoadAll for failure handling.
func (s *Service) LoadAll() (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	return s.store.LoadAll(s.registry)
}

// StartRecording begins recording source under name. Returns an error
// wrapping [ErrAlreadyRecording] if source already has a session, or
// [ErrNameRecording] if another session is recording name.
// The session ends on its own when source goes offline or the
// capacity is reached, or when StopRecording is called.
func (s *Service) StartRecording(source actor.Source, name string) (*recorder.Session, error) {
	if source == nil {
		return nil, errors.New("pathing: source is required")
	}
	actorID := source.ID()

	session, err := recorder.New(recorder.Config{
		Name:       name,
		Kind:       trail.KindMovement,
		Source:     source,
		MaxLength:  s.maxPathLocations,
		MinStep:    s.minStep,
		Persister:  s.store,
		Publisher:  s.registry,
		OnComplete: s.sessionComplete,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if existing, ok := s.sessions[actorID]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: actor %q is recording %q", ErrAlreadyRecording, actorID, existing.Name())
	}
	for otherID, other := range s.sessions {
		if other.Name() == name {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %q by actor %q", ErrNameRecording, name, otherID)
		}
	}
	s.sessions[actorID] = session
	s.mu.Unlock()

	if err := session.Start(s.scheduler, s.samplingInterval); err != nil {
		s.mu.Lock()
		delete(s.sessions, actorID)
		s.mu.Unlock()
		return nil, err
	}
	return session, nil
}

// StopRecording ends session, finalizing it on the calling goroutine
// unless another goroutine is already doing so. Stopping a session
// that already ended is a no-op.
func (s *Service) StopRecording(session *recorder.Session) {
	if session == nil {
		return
	}
	session.Stop()
}

// Recording returns the active session for actorID, if any.
func (s *Service) Recording(actorID string) (*recorder.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[actorID]
	return session, ok
}

// FindPath returns the registered path called name, or an error
// wrapping trail.ErrNotFound.
func (s *Service) FindPath(name string) (*trail.Path, error) {
	return s.registry.Find(name)
}

// Paths returns every registered path ordered by name.
func (s *Service) Paths() []*trail.Path {
	return s.registry.Paths()
}

// BindReplay starts driving the follower with followerID along path.
// Returns an error wrapping trail.ErrInvalidBinding when path has
// fewer than two waypoints; the follower is left untouched. A follower
// already bound to a path is rebound: the old binding is unbound.
func (s *Service) BindReplay(path *trail.Path, followerID string) (*replay.Binding, error) {
	binding, err := replay.NewBinding(replay.BindingConfig{
		Path:       path,
		FollowerID: followerID,
		Directory:  s.directory,
		OnUnbind:   s.bindingEnded,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	previous := s.bindings[followerID]
	s.bindings[followerID] = binding
	s.mu.Unlock()

	if previous != nil {
		s.logger.Debug("follower rebound",
			"follower", followerID,
			"previous_path", previous.Path().Name(),
			"path", path.Name(),
		)
		previous.Unbind()
	}
	if err := binding.Start(s.scheduler, s.replayInterval); err != nil {
		s.bindingEnded(binding)
		return nil, err
	}
	return binding, nil
}

// Unbind stops the replay driving followerID. Reports whether a
// binding existed.
func (s *Service) Unbind(followerID string) bool {
	s.mu.Lock()
	binding, ok := s.bindings[followerID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	binding.Unbind()
	return true
}

// Binding returns the active binding for followerID, if any.
func (s *Service) Binding(followerID string) (*replay.Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	binding, ok := s.bindings[followerID]
	return binding, ok
}

// Followers returns the IDs of bound followers in lexical order.
func (s *Service) Followers() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.bindings))
	for id := range s.bindings {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Close stops every active recording (finalizing each one) and every
// replay binding. Later calls that would start work return
// [ErrClosed]. Close is idempotent. The registry is left intact; the
// owner clears it.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sessions := make([]*recorder.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	bindings := make([]*replay.Binding, 0, len(s.bindings))
	for _, binding := range s.bindings {
		bindings = append(bindings, binding)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
		<-session.Done()
	}
	for _, binding := range bindings {
		binding.Unbind()
	}

	s.logger.Info("path service closed",
		"sessions_stopped", len(sessions),
		"bindings_stopped", len(bindings),
	)
	return nil
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// sessionComplete forgets a finished session so its actor can record
// again.
func (s *Service) sessionComplete(session *recorder.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.SourceID()] == session {
		delete(s.sessions, session.SourceID())
	}
}

// bindingEnded forgets a binding unless it was already replaced.
func (s *Service) bindingEnded(binding *replay.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindings[binding.FollowerID()] == binding {
		delete(s.bindings, binding.FollowerID())
	}
}
