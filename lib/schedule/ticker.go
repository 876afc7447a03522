// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bureau-foundation/waypath/lib/clock"
)

// Ticker is a Scheduler that gives each handle its own goroutine and
// clock ticker. A panicking tick is logged and its loop keeps
// running.
type Ticker struct {
	clock  clock.Clock
	logger *slog.Logger

	loops sync.WaitGroup
}

// NewTicker returns a Ticker scheduler driven by c. A nil logger
// discards panic reports.
func NewTicker(c clock.Clock, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ticker{clock: c, logger: logger}
}

// Every implements Scheduler.
func (s *Ticker) Every(interval time.Duration, tick Tick) Handle {
	if interval <= 0 {
		panic("schedule: non-positive interval")
	}

	handle := &tickerHandle{stop: make(chan struct{})}
	ticker := s.clock.NewTicker(interval)

	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		defer ticker.Stop()
		for {
			select {
			case <-handle.stop:
				return
			case <-ticker.C:
			}
			// Cancel may have raced with the tick delivery.
			select {
			case <-handle.stop:
				return
			default:
			}
			s.run(tick)
		}
	}()
	return handle
}

// Wait blocks until every loop started by this scheduler has exited.
// Loops exit only after their handle is cancelled.
func (s *Ticker) Wait() {
	s.loops.Wait()
}

func (s *Ticker) run(tick Tick) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("scheduled tick panicked",
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
		}
	}()
	tick()
}

type tickerHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}
