// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the path subsystem performs.
// Production code injects Real(); tests inject Fake() and move time
// forward explicitly.
//
// Code that would call time.Now or time.NewTicker takes a Clock
// instead, usually as a field on the struct that owns the work.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker delivering ticks on C every d.
	// Panics if d <= 0, like time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. Call Stop when done with it.
//
// C has capacity 1. A consumer that falls behind misses ticks rather
// than receiving a backlog, which is what a sampling loop wants.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off. No tick is sent on C after Stop returns.
// C is not closed. Stop is safe to call more than once.
func (t *Ticker) Stop() { t.stopFunc() }
