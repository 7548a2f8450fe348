// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster holds the member records of one room as the viewer
// sees them and the rules for presenting them: which members are
// displayed, in what order, which match a search query, and which
// third-party invites are still pending.
//
// A [Snapshot] is rebuilt from room state on every qualifying event
// and is never patched in place. Ordering is defined by
// [Sorter.Compare]: members with presence information before those
// without, currently active members first, then by power level and
// collated display name among active members, and by most recent
// activity among the rest.
package roster
