// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Manual is a Scheduler driven by explicit Step calls, for tests and
// offline dry runs. Nothing runs until Step is called; each Step fires
// every live handle exactly once, in the order the handles were
// created, on the calling goroutine.
type Manual struct {
	mu      sync.Mutex
	entries []*manualEntry
}

type manualEntry struct {
	interval  time.Duration
	tick      Tick
	cancelled atomic.Bool

	// running serializes ticks of one entry when Step is called from
	// several goroutines at once.
	running sync.Mutex
}

// NewManual returns an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Every implements Scheduler. The interval is recorded but otherwise
// ignored; see Interval.
func (m *Manual) Every(interval time.Duration, tick Tick) Handle {
	if interval <= 0 {
		panic("schedule: non-positive interval")
	}
	entry := &manualEntry{interval: interval, tick: tick}

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return entry
}

// Step fires one tick on every live handle and returns how many ticks
// ran. Handles cancelled during the step (including by their own tick)
// do not fire again.
func (m *Manual) Step() int {
	m.mu.Lock()
	snapshot := make([]*manualEntry, len(m.entries))
	copy(snapshot, m.entries)
	m.mu.Unlock()

	fired := 0
	for _, entry := range snapshot {
		entry.running.Lock()
		if !entry.cancelled.Load() {
			entry.tick()
			fired++
		}
		entry.running.Unlock()
	}

	m.prune()
	return fired
}

// StepN calls Step n times and returns the total ticks fired.
func (m *Manual) StepN(n int) int {
	total := 0
	for range n {
		total += m.Step()
	}
	return total
}

// Active returns the number of handles that have not been cancelled.
func (m *Manual) Active() int {
	m.prune()
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Intervals returns the interval of each live handle, in creation
// order. Tests use it to check that components ask for the configured
// period.
func (m *Manual) Intervals() []time.Duration {
	m.prune()
	m.mu.Lock()
	defer m.mu.Unlock()
	intervals := make([]time.Duration, len(m.entries))
	for i, entry := range m.entries {
		intervals[i] = entry.interval
	}
	return intervals
}

func (m *Manual) prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.entries[:0]
	for _, entry := range m.entries {
		if !entry.cancelled.Load() {
			live = append(live, entry)
		}
	}
	clear(m.entries[len(live):])
	m.entries = live
}

func (e *manualEntry) Cancel() {
	e.cancelled.Store(true)
}
