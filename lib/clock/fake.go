// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock set to initial. Time does not move until
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.tickersChanged = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. It is safe for
// concurrent use.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	tickers        []*fakeTicker
	tickersChanged *sync.Cond
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a ticker whose first deadline is d after the
// current fake time. Panics if d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		channel:  make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, ticker)
	c.tickersChanged.Broadcast()

	return &Ticker{
		C: ticker.channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if !ticker.stopped {
				ticker.stopped = true
				c.tickersChanged.Broadcast()
			}
		},
	}
}

// Advance moves the clock forward by d and delivers a tick to every
// ticker whose deadline falls inside the new time, once per elapsed
// interval, in deadline order. Sends never block: a tick that finds
// the channel full is dropped, matching time.Ticker.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current

	type delivery struct {
		deadline time.Time
		channel  chan time.Time
	}
	var deliveries []delivery
	for _, ticker := range c.tickers {
		for !ticker.stopped && !ticker.deadline.After(target) {
			deliveries = append(deliveries, delivery{deadline: ticker.deadline, channel: ticker.channel})
			ticker.deadline = ticker.deadline.Add(ticker.interval)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].deadline.Before(deliveries[j].deadline)
	})
	for _, delivery := range deliveries {
		select {
		case delivery.channel <- delivery.deadline:
		default:
		}
	}
}

// WaitForTickers blocks until at least n tickers are active (created
// and not stopped).
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() < n {
		c.tickersChanged.Wait()
	}
}

// WaitForNoTickers blocks until every ticker has been stopped. Tests
// use it to observe that a loop shut itself down.
func (c *FakeClock) WaitForNoTickers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() > 0 {
		c.tickersChanged.Wait()
	}
}

// ActiveTickers returns the number of tickers that have not been
// stopped.
func (c *FakeClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

// activeLocked counts live tickers and drops stopped ones. Must be
// called with c.mu held.
func (c *FakeClock) activeLocked() int {
	live := c.tickers[:0]
	for _, ticker := range c.tickers {
		if !ticker.stopped {
			live = append(live, ticker)
		}
	}
	c.tickers = live
	return len(live)
}
