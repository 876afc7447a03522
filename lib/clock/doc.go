// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that recording
// and replay loops can be driven deterministically in tests.
//
// Production code holds a [Clock] and calls Now and NewTicker on it
// rather than on the time package. Real() forwards to the time
// package. Fake() returns a [FakeClock] whose time moves only when the
// test calls Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	scheduler := schedule.NewTicker(fake, logger)
//	// ... start something that calls scheduler.Every ...
//	fake.WaitForTickers(1)              // the loop has registered its ticker
//	fake.Advance(50 * time.Millisecond) // deliver exactly one tick
//
// WaitForTickers closes the race between a goroutine creating its
// ticker and the test advancing time past the first deadline.
package clock
