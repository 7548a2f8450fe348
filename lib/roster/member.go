// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// User is the presence record shared by every room a user is in.
type User struct {
	UserID          ref.UserID
	CurrentlyActive bool

	// LastActiveAgo is the idle duration the server reported in the
	// most recent presence event, measured at LastPresenceTS.
	LastActiveAgo  time.Duration
	LastPresenceTS time.Time
}

// LastActiveTS is the wall-clock time of the user's last activity.
// The zero time means the user has never reported presence.
func (user *User) LastActiveTS() time.Time {
	if user == nil || user.LastPresenceTS.IsZero() {
		return time.Time{}
	}
	return user.LastPresenceTS.Add(-user.LastActiveAgo)
}

// Member is one user's membership in a room.
type Member struct {
	UserID     ref.UserID
	Membership event.Membership
	PowerLevel int

	// Name is the display name, disambiguated against other members
	// sharing it. Empty when no name is known.
	Name string

	// User is nil until presence for the user has been seen.
	User *User

	// ThirdPartyToken is the signed token of the third-party invite
	// this membership was converted from, if any.
	ThirdPartyToken string
}

// Snapshot maps user IDs to member records. Each rebuild produces a
// new Snapshot; holders never see it change.
type Snapshot map[ref.UserID]*Member

// ThirdPartyInvite is a pending invitation addressed to an external
// identifier, keyed by the token in its state key.
type ThirdPartyInvite struct {
	Token       string
	DisplayName string
	Sender      ref.UserID
}
