// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"slices"
	"strings"

	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/messaging"
)

// HasRoom reports whether any state for roomID has been applied.
func (store *Store) HasRoom(roomID ref.RoomID) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	_, ok := store.rooms[roomID]
	return ok
}

// Roster builds a snapshot of every member of roomID, in any
// membership. Names are disambiguated: a display name shared by more
// than one joined or invited member becomes "name (user ID)", and a
// member without one is named by user ID. Each member carries a copy
// of the user's presence, or nil if none has been seen.
func (store *Store) Roster(roomID ref.RoomID) roster.Snapshot {
	store.mu.RLock()
	defer store.mu.RUnlock()

	room, ok := store.rooms[roomID]
	if !ok {
		return roster.Snapshot{}
	}

	nameCounts := make(map[string]int)
	for _, member := range room.members {
		if member.displayName != "" && isListed(member.membership) {
			nameCounts[member.displayName]++
		}
	}

	snapshot := make(roster.Snapshot, len(room.members))
	for userID, member := range room.members {
		entry := &roster.Member{
			UserID:          userID,
			Membership:      member.membership,
			PowerLevel:      room.powerLevels.UserLevel(userID.String()),
			Name:            displayName(userID, member, nameCounts),
			ThirdPartyToken: member.thirdPartyToken,
		}
		if user, ok := store.users[userID]; ok {
			presence := *user
			entry.User = &presence
		}
		snapshot[userID] = entry
	}
	return snapshot
}

func isListed(membership event.Membership) bool {
	return membership == event.MembershipJoin || membership == event.MembershipInvite
}

// displayName disambiguates a name shared by several joined or invited
// members. Departed members keep their plain name and never count
// toward a clash.
func displayName(userID ref.UserID, member memberState, counts map[string]int) string {
	name := member.displayName
	switch {
	case strings.TrimSpace(name) == "":
		return userID.String()
	case isListed(member.membership) && counts[name] > 1:
		return name + " (" + userID.String() + ")"
	default:
		return name
	}
}

// Member returns the snapshot entry for one user.
func (store *Store) Member(roomID ref.RoomID, userID ref.UserID) (*roster.Member, bool) {
	member, ok := store.Roster(roomID)[userID]
	return member, ok
}

// RoomName returns the m.room.name of roomID, or "" if unset.
func (store *Store) RoomName(roomID ref.RoomID) string {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if room, ok := store.rooms[roomID]; ok {
		return room.name
	}
	return ""
}

// HistoryVisibility returns the room's history visibility, or "" if
// the room has no m.room.history_visibility event.
func (store *Store) HistoryVisibility(roomID ref.RoomID) event.HistoryVisibility {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if room, ok := store.rooms[roomID]; ok {
		return room.historyVisibility
	}
	return ""
}

// PowerLevels returns the room's power levels, or nil if none are
// known. The value is replaced on update and must not be modified.
func (store *Store) PowerLevels(roomID ref.RoomID) *schema.PowerLevels {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if room, ok := store.rooms[roomID]; ok {
		return room.powerLevels
	}
	return nil
}

// ThirdPartyInvites returns every m.room.third_party_invite event in
// the room, valid or not, ordered by token.
func (store *Store) ThirdPartyInvites(roomID ref.RoomID) []roster.ThirdPartyInviteEvent {
	store.mu.RLock()
	defer store.mu.RUnlock()
	room, ok := store.rooms[roomID]
	if !ok {
		return nil
	}
	invites := make([]roster.ThirdPartyInviteEvent, 0, len(room.thirdPartyInvites))
	for _, invite := range room.thirdPartyInvites {
		invites = append(invites, invite)
	}
	slices.SortFunc(invites, func(a, b roster.ThirdPartyInviteEvent) int {
		return strings.Compare(a.Token, b.Token)
	})
	return invites
}

// InviteForThreePIDToken returns the member whose membership event
// claimed the third-party invite with the given token.
func (store *Store) InviteForThreePIDToken(roomID ref.RoomID, token string) (ref.UserID, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	room, ok := store.rooms[roomID]
	if !ok || token == "" {
		return ref.UserID{}, false
	}
	for userID, member := range room.members {
		if member.thirdPartyToken == token {
			return userID, true
		}
	}
	return ref.UserID{}, false
}

// Timeline returns a copy of the messages kept for roomID, oldest
// first.
func (store *Store) Timeline(roomID ref.RoomID) []messaging.Event {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if room, ok := store.rooms[roomID]; ok {
		return slices.Clone(room.timeline)
	}
	return nil
}

// User returns a copy of the presence record for userID.
func (store *Store) User(userID ref.UserID) (roster.User, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if user, ok := store.users[userID]; ok {
		return *user, true
	}
	return roster.User{}, false
}
