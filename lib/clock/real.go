// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Real returns the wall clock.
func Real() Clock { return wallClock{} }

// wallClock delegates to the time package.
type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (wallClock) AfterFunc(d time.Duration, f func()) *Timer {
	pending := time.AfterFunc(d, f)
	return &Timer{stopFunc: pending.Stop}
}
