// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType identifies a Matrix state or timeline event type
// (m.room.member, m.room.third_party_invite, ...). Constants live in
// lib/schema.
//
// EventType is a named string type rather than a struct wrapper:
// event types are opaque and need no validation. The type exists for
// compile-time safety, so a state key cannot be passed where an event
// type is expected.
type EventType string

// String returns the event type string.
func (t EventType) String() string { return string(t) }
