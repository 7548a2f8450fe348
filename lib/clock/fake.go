// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock whose time is initial. The clock only moves
// when Advance is called.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{now: initial}
	fake.pendingChanged = sync.NewCond(&fake.mu)
	return fake
}

// FakeClock is a deterministic Clock for tests. It is safe for
// concurrent use.
//
// Advance walks time forward one deadline at a time: while a waiter
// fires, Now reports that waiter's deadline, so a callback that calls
// AfterFunc again schedules relative to the moment it fired. Callbacks
// run on the goroutine calling Advance and must not call Advance.
type FakeClock struct {
	mu             sync.Mutex
	now            time.Time
	pending        []*scheduled
	pendingChanged *sync.Cond
}

// scheduled is one After channel or AfterFunc callback waiting for its
// deadline.
type scheduled struct {
	at       time.Time
	deliver  chan time.Time
	callback func()
	done     bool
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that receives the fake time once the clock
// reaches now+d.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	deliver := make(chan time.Time, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		deliver <- c.now
		return deliver
	}
	c.scheduleLocked(&scheduled{at: c.now.Add(d), deliver: deliver})
	return deliver
}

// AfterFunc runs f during the Advance that reaches now+d. If d <= 0, f
// runs before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mu.Lock()
	entry := &scheduled{at: c.now.Add(d), callback: f}
	c.scheduleLocked(entry)
	c.mu.Unlock()

	return &Timer{stopFunc: func() bool { return c.cancel(entry) }}
}

func (c *FakeClock) scheduleLocked(entry *scheduled) {
	c.pending = append(c.pending, entry)
	c.pendingChanged.Broadcast()
}

func (c *FakeClock) cancel(entry *scheduled) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry.done {
		return false
	}
	entry.done = true
	c.removeLocked(entry)
	return true
}

func (c *FakeClock) removeLocked(entry *scheduled) {
	for i, candidate := range c.pending {
		if candidate == entry {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d. Each waiter due by the new time
// fires in deadline order, ties in scheduling order, including waiters
// scheduled by callbacks during this Advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		entry := c.nextDue(target)
		if entry == nil {
			break
		}
		if entry.callback != nil {
			entry.callback()
			continue
		}
		entry.deliver <- entry.at
	}

	c.mu.Lock()
	if c.now.Before(target) {
		c.now = target
	}
	c.mu.Unlock()
}

// nextDue removes and returns the earliest waiter due by target, moving
// the clock to its deadline. Returns nil when nothing is due.
func (c *FakeClock) nextDue(target time.Time) *scheduled {
	c.mu.Lock()
	defer c.mu.Unlock()

	var earliest *scheduled
	for _, entry := range c.pending {
		if entry.at.After(target) {
			continue
		}
		if earliest == nil || entry.at.Before(earliest.at) {
			earliest = entry
		}
	}
	if earliest == nil {
		return nil
	}
	earliest.done = true
	c.removeLocked(earliest)
	if earliest.at.After(c.now) {
		c.now = earliest.at
	}
	return earliest
}

// WaitForTimers blocks until at least n waiters are pending. Tests use
// it when the code under test schedules from another goroutine.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.pendingChanged.Wait()
	}
}

// PendingCount returns the number of waiters that have neither fired
// nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
