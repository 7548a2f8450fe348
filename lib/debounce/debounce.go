// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package debounce coalesces bursts of triggers into one deferred call.
//
// A Debouncer is owned by a component and closed with it. Trigger arms
// a timer for the window unless one is already armed; every further
// Trigger inside the window joins the pending call. The action runs
// once when the window expires, on the clock's timer goroutine (or
// synchronously inside clock.FakeClock.Advance in tests).
//
//	rebuild := debounce.New(clock.Real(), 500*time.Millisecond, list.rebuild)
//	defer rebuild.Close()
//	subscription := source.Subscribe(func(roomstate.Event) { rebuild.Trigger() })
package debounce

import (
	"sync"
	"time"

	"github.com/bureau-foundation/roomview/lib/clock"
)

// Debouncer schedules action at most once per window. Safe for
// concurrent use.
type Debouncer struct {
	clock  clock.Clock
	window time.Duration
	action func()

	mu    sync.Mutex
	timer *clock.Timer
	// generation invalidates a timer callback that raced with Cancel,
	// Flush, or Close: the callback only runs the action if the
	// generation it captured is still current.
	generation uint64
	closed     bool
}

// minimumWindow replaces non-positive windows. The timer callback
// takes d.mu, so it must never run inline inside Trigger.
const minimumWindow = time.Millisecond

// New returns a Debouncer that runs action window after the first
// Trigger of a burst.
func New(timeSource clock.Clock, window time.Duration, action func()) *Debouncer {
	if timeSource == nil {
		timeSource = clock.Real()
	}
	if window < minimumWindow {
		window = minimumWindow
	}
	return &Debouncer{
		clock:  timeSource,
		window: window,
		action: action,
	}
}

// Trigger schedules the action unless a call is already pending or the
// Debouncer is closed. Returns true when this call armed the timer.
func (d *Debouncer) Trigger() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.timer != nil {
		return false
	}
	generation := d.generation
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(generation) })
	return true
}

func (d *Debouncer) fire(generation uint64) {
	d.mu.Lock()
	if d.closed || generation != d.generation {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.generation++
	d.mu.Unlock()

	d.action()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel discards the pending call. Returns true if one existed.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.generation++
	return true
}

// Flush runs the pending call now, on the caller's goroutine. Returns
// false (and runs nothing) when no call was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.closed || !d.cancelLocked() {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	d.action()
	return true
}

// Close cancels any pending call. Later Trigger and Flush calls do
// nothing. Idempotent.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.closed = true
}
