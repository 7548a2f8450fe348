// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	if got, want := clock.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFiresOnAdvance(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(3 * time.Second)

	select {
	case <-channel:
		t.Fatal("After fired before Advance")
	default:
	}

	clock.Advance(3 * time.Second)

	select {
	case <-channel:
	default:
		t.Fatal("After did not fire after Advance")
	}
}

func TestFakeClockAfterFuncOrderAndStop(t *testing.T) {
	clock := Fake(epoch)
	var order []string

	clock.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	clock.AfterFunc(1*time.Second, func() { order = append(order, "first") })
	stopped := clock.AfterFunc(1500*time.Millisecond, func() { order = append(order, "stopped") })

	if !stopped.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if stopped.Stop() {
		t.Fatal("second Stop returned true")
	}
	if clock.PendingCount() != 2 {
		t.Fatalf("PendingCount = %d, want 2", clock.PendingCount())
	}

	clock.Advance(2 * time.Second)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("fire order = %v, want [first second]", order)
	}
}

func TestFakeClockAfterFuncRearmFromCallback(t *testing.T) {
	clock := Fake(epoch)
	fired := 0
	var rearm func()
	rearm = func() {
		fired++
		if fired < 3 {
			clock.AfterFunc(time.Second, rearm)
		}
	}
	clock.AfterFunc(time.Second, rearm)

	clock.Advance(time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d after first second, want 1", fired)
	}
	clock.Advance(5 * time.Second)
	if fired != 3 {
		t.Fatalf("fired = %d, want 3", fired)
	}
}

func TestFakeClockNowDuringCallback(t *testing.T) {
	clock := Fake(epoch)
	var seen []time.Time
	record := func() { seen = append(seen, clock.Now()) }
	clock.AfterFunc(2*time.Second, record)
	clock.AfterFunc(500*time.Millisecond, record)

	clock.Advance(10 * time.Second)

	want := []time.Time{epoch.Add(500 * time.Millisecond), epoch.Add(2 * time.Second)}
	if len(seen) != len(want) {
		t.Fatalf("callbacks ran %d times, want %d", len(seen), len(want))
	}
	for i := range want {
		if !seen[i].Equal(want[i]) {
			t.Errorf("callback %d saw Now() = %v, want %v", i, seen[i], want[i])
		}
	}
	if got, want := clock.Now(), epoch.Add(10*time.Second); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterDeliversDeadline(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(time.Second)
	clock.Advance(3 * time.Second)
	if got := <-channel; !got.Equal(epoch.Add(time.Second)) {
		t.Fatalf("After delivered %v, want %v", got, epoch.Add(time.Second))
	}
}

func TestFakeClockAfterFuncZeroDurationRunsInline(t *testing.T) {
	clock := Fake(epoch)
	ran := false
	timer := clock.AfterFunc(0, func() { ran = true })
	if !ran {
		t.Fatal("AfterFunc(0) did not run inline")
	}
	if timer.Stop() {
		t.Fatal("Stop on already-run timer returned true")
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-clock.After(time.Second)
		close(done)
	}()
	clock.WaitForTimers(1)
	clock.Advance(time.Second)
	<-done
}
