// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated Matrix identifier types for the room
// viewer.
//
// [UserID], [RoomID], and [RoomAlias] are immutable value types parsed
// once at the boundary (flag parsing, /sync decoding, invite input) so
// the rest of the code never re-validates a raw string. All three
// implement encoding.TextMarshaler and encoding.TextUnmarshaler, which
// lets encoding/json use them as struct fields and map keys.
// [EventType] is a named string: event types are opaque and need no
// parsing.
//
// This package has no dependencies outside the standard library.
package ref
