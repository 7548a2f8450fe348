// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// PowerLevels is the content of an m.room.power_levels state event,
// reduced to the fields that rank members and gate invites.
//
// Pointer fields distinguish "not set" (nil) from "explicitly 0".
type PowerLevels struct {
	Users        map[string]int `json:"users,omitempty"`
	UsersDefault *int           `json:"users_default,omitempty"`
	Invite       *int           `json:"invite,omitempty"`
}

// UserLevel returns the power level for a Matrix user ID string: the
// explicit entry in Users if present, otherwise UsersDefault, otherwise
// 0. A nil receiver (no power levels event in the room) yields 0.
func (powerLevels *PowerLevels) UserLevel(userID string) int {
	if powerLevels == nil {
		return 0
	}
	if level, ok := powerLevels.Users[userID]; ok {
		return level
	}
	if powerLevels.UsersDefault != nil {
		return *powerLevels.UsersDefault
	}
	return 0
}

// InviteLevel returns the power level required to invite, defaulting
// to 0 when unset.
func (powerLevels *PowerLevels) InviteLevel() int {
	if powerLevels == nil || powerLevels.Invite == nil {
		return 0
	}
	return *powerLevels.Invite
}

// CanInvite reports whether userID meets the room's invite level.
func (powerLevels *PowerLevels) CanInvite(userID string) bool {
	return powerLevels.UserLevel(userID) >= powerLevels.InviteLevel()
}
