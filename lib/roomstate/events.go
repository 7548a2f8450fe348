// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"sync"

	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// Kind classifies a store change.
type Kind int

const (
	// Members fires when a user's membership in a room changes.
	Members Kind = iota + 1
	// MemberName fires when a member's display name, or the
	// disambiguated form of it, changes.
	MemberName
	// StateEvent fires for every other state event. EventType names
	// the event.
	StateEvent
	// RoomArrived fires the first time state for a room is seen.
	RoomArrived
	// Presence fires when a user's presence changes. RoomID is zero.
	Presence
	// Timeline fires when messages are appended to a room.
	Timeline
)

func (kind Kind) String() string {
	switch kind {
	case Members:
		return "members"
	case MemberName:
		return "member_name"
	case StateEvent:
		return "state_event"
	case RoomArrived:
		return "room_arrived"
	case Presence:
		return "presence"
	case Timeline:
		return "timeline"
	default:
		return "unknown"
	}
}

// Event describes one change to the store.
type Event struct {
	Kind   Kind
	RoomID ref.RoomID
	UserID ref.UserID

	// EventType is set for StateEvent.
	EventType ref.EventType

	// Membership is the new membership for Members.
	Membership event.Membership
}

// Handler receives store events. Handlers run on the goroutine that
// applied the change and must not block.
type Handler func(Event)

// Subscription is a registered Handler. Close releases it; no event is
// delivered to the handler after Close returns, except one already in
// progress on another goroutine.
type Subscription struct {
	store *Store
	id    uint64
	once  sync.Once
}

// Close unregisters the handler. Safe to call more than once.
func (subscription *Subscription) Close() {
	subscription.once.Do(func() {
		subscription.store.unsubscribe(subscription.id)
	})
}
