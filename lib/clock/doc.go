// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Components that defer work (the member list's debounced rebuild, the
// bulk invite pacer, presence age calculations) take a Clock instead of
// calling the time package directly. Production code passes Real();
// tests pass Fake() and move time forward with Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	list := memberlist.New(source, roomID, memberlist.Config{Clock: fake})
//	// ... trigger events ...
//	fake.Advance(500 * time.Millisecond) // rebuild runs here, synchronously
//
// AfterFunc callbacks on a FakeClock run synchronously inside Advance,
// in deadline order, which makes timer-driven code deterministic
// without sleeping.
package clock
