// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schedule is the fixed-interval tick contract that drives
// recording sessions and replay cursors.
//
// A [Scheduler] runs a [Tick] function every interval until the
// returned [Handle] is cancelled. Two guarantees hold for every
// implementation:
//
//   - Ticks for one handle never overlap. A tick that is still running
//     when the next interval elapses delays that tick rather than
//     running beside it.
//   - Cancel is idempotent and may be called from inside the tick it
//     cancels. After Cancel returns, at most the tick already in flight
//     completes; no new tick starts.
//
// [Ticker] is the production scheduler: one goroutine per handle
// driven by a [clock.Clock] ticker. [Manual] fires ticks only when the
// test calls [Manual.Step], which makes recorder and replay state
// machines single-steppable.
package schedule
