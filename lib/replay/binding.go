// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package replay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
)

// BindingConfig describes one follower driven along one path. Path,
// FollowerID, and Directory are required.
type BindingConfig struct {
	Path       *trail.Path
	FollowerID string
	Directory  actor.Directory

	// OnUnbind, if set, runs once when the binding ends, whether by
	// Unbind or because the follower vanished.
	OnUnbind func(*Binding)

	// Logger receives unbind records. If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Binding moves one follower along a path on every scheduler tick.
// All methods are safe for concurrent use.
type Binding struct {
	path       *trail.Path
	followerID string
	directory  actor.Directory
	onUnbind   func(*Binding)
	logger     *slog.Logger

	mu     sync.Mutex
	cursor *Cursor
	handle schedule.Handle
	bound  bool
	steps  int
}

// NewBinding validates cfg and returns an unstarted binding. Returns
// an error wrapping trail.ErrInvalidBinding for paths with fewer than
// two waypoints; nothing is scheduled in that case and the follower
// stays where it is.
func NewBinding(cfg BindingConfig) (*Binding, error) {
	if cfg.Path == nil {
		return nil, errors.New("replay: Path is required")
	}
	if cfg.FollowerID == "" {
		return nil, errors.New("replay: FollowerID is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("replay: Directory is required")
	}
	cursor, err := NewCursor(cfg.Path)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binding{
		path:       cfg.Path,
		followerID: cfg.FollowerID,
		directory:  cfg.Directory,
		onUnbind:   cfg.OnUnbind,
		logger:     logger.With("path", cfg.Path.Name(), "follower", cfg.FollowerID),
		cursor:     cursor,
	}, nil
}

// Start schedules the binding's ticks. It fails if the binding was
// already started or unbound.
func (b *Binding) Start(scheduler schedule.Scheduler, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("replay: tick interval must be positive, got %v", interval)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != nil {
		return fmt.Errorf("replay: binding for follower %q already started", b.followerID)
	}
	b.bound = true
	b.handle = scheduler.Every(interval, b.Tick)

	b.logger.Debug("replay bound", "interval", interval, "waypoints", b.path.Len())
	return nil
}

// Path returns the path being replayed.
func (b *Binding) Path() *trail.Path { return b.path }

// FollowerID returns the ID of the driven follower.
func (b *Binding) FollowerID() string { return b.followerID }

// Bound reports whether the binding is still ticking.
func (b *Binding) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bound
}

// Index returns the index of the waypoint the follower was last moved
// to.
func (b *Binding) Index() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor.Index()
}

// Steps returns how many times the follower has been moved.
func (b *Binding) Steps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.steps
}

// Tick advances the cursor and moves the follower. If the follower no
// longer resolves, the binding unbinds itself instead.
func (b *Binding) Tick() {
	b.mu.Lock()
	if !b.bound {
		b.mu.Unlock()
		return
	}

	follower, ok := b.directory.Follower(b.followerID)
	if !ok {
		b.logger.Warn("follower no longer present, replay unbound", "index", b.cursor.Index())
		b.unbindUnlock()
		return
	}
	step := b.cursor.Advance()
	b.steps++
	b.mu.Unlock()

	follower.MoveTo(step.Position, step.Facing)
}

// Unbind stops the binding. The follower stays where the last tick
// put it. Unbind is idempotent.
func (b *Binding) Unbind() {
	b.mu.Lock()
	if !b.bound && b.handle != nil {
		b.mu.Unlock()
		return
	}
	if !b.bound {
		// Never started; mark it so a later Start cannot revive it.
		b.handle = noopHandle{}
		b.mu.Unlock()
		return
	}
	b.unbindUnlock()
}

// unbindUnlock must be called with b.mu held and the binding bound.
func (b *Binding) unbindUnlock() {
	b.bound = false
	b.handle.Cancel()
	b.mu.Unlock()

	if b.onUnbind != nil {
		b.onUnbind(b)
	}
}

type noopHandle struct{}

func (noopHandle) Cancel() {}
