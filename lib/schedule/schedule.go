// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schedule

import "time"

// Tick is one unit of periodic work. It should be short and must not
// block on anything but its own I/O.
type Tick func()

// Handle controls one scheduled tick loop.
type Handle interface {
	// Cancel stops future ticks. Safe to call repeatedly and from
	// inside the tick itself.
	Cancel()
}

// Scheduler runs ticks at a fixed interval.
type Scheduler interface {
	// Every starts calling tick once per interval, beginning one
	// interval from now. Panics if interval <= 0.
	Every(interval time.Duration, tick Tick) Handle
}
