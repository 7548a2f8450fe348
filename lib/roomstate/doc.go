// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomstate keeps the client-side view of Matrix rooms: member
// events, power levels, history visibility, pending third-party
// invites, recent messages, and the presence table shared by every
// room.
//
// A [Store] is fed by [Syncer], which long-polls /sync, or directly
// with [Store.LoadRoom] from a /state fetch. Every mutation is
// announced to subscribers as an [Event] after the store's lock is
// released, so handlers may call back into the store.
//
// Views never hold references into the store. [Store.Roster] builds a
// fresh [roster.Snapshot] on each call, and the other accessors
// return copies or values that are replaced, never mutated.
package roomstate
