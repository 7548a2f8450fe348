// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package invite implements the room invite workflow: splitting and
// validating the addresses a user typed, the one-time warning before
// inviting into a room whose history is shared with new members, and
// single or bulk submission with classified failures.
//
// Per-session state lives in an explicit [Session] value that the
// caller creates once and passes to every [Workflow]. The dialogs
// the workflow needs are reached through the [Dialogs] interface so
// the same logic drives the terminal UI and tests.
package invite
