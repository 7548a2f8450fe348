// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// LoginRequest is the body of POST /login for password auth.
type LoginRequest struct {
	Type                     string          `json:"type"`
	Identifier               LoginIdentifier `json:"identifier"`
	Password                 string          `json:"password"`
	InitialDeviceDisplayName string          `json:"initial_device_display_name,omitempty"`
}

// LoginIdentifier is the m.id.user identifier for password login.
type LoginIdentifier struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id"`
}

// WhoAmIResponse is returned by WhoAmI. IsGuest is set by homeservers
// for guest-access accounts.
type WhoAmIResponse struct {
	UserID   ref.UserID `json:"user_id"`
	DeviceID string     `json:"device_id,omitempty"`
	IsGuest  bool       `json:"is_guest,omitempty"`
}

// Event is a Matrix event. Content is kept raw; consumers decode it
// into the content type matching Type.
type Event struct {
	EventID        string          `json:"event_id,omitempty"`
	Type           ref.EventType   `json:"type"`
	Sender         string          `json:"sender"`
	OriginServerTS int64           `json:"origin_server_ts,omitempty"`
	Content        json.RawMessage `json:"content"`
	StateKey       *string         `json:"state_key,omitempty"`
}

// IsState reports whether the event carries a state key.
func (e Event) IsState() bool { return e.StateKey != nil }

// SyncOptions controls a /sync call.
type SyncOptions struct {
	Since      string // next_batch from the previous response; empty for initial sync
	Timeout    int    // long-poll hold in milliseconds
	SetTimeout bool   // send Timeout even when zero
	Filter     string // filter ID or inline JSON filter
}

// SyncResponse is the subset of the /sync response the viewer reads.
type SyncResponse struct {
	NextBatch string          `json:"next_batch"`
	Presence  PresenceSection `json:"presence,omitempty"`
	Rooms     RoomsSection    `json:"rooms"`
}

// PresenceSection holds m.presence events. Content is decoded by the
// consumer.
type PresenceSection struct {
	Events []Event `json:"events"`
}

// RoomsSection contains per-room sync data. Map keys are validated by
// ref.RoomID's TextUnmarshaler.
type RoomsSection struct {
	Join   map[ref.RoomID]JoinedRoom `json:"join,omitempty"`
	Invite map[ref.RoomID]InvitedRoom `json:"invite,omitempty"`
	Leave  map[ref.RoomID]JoinedRoom `json:"leave,omitempty"`
}

// JoinedRoom contains sync data for a joined (or left) room.
type JoinedRoom struct {
	Timeline TimelineSection `json:"timeline"`
	State    StateSection    `json:"state"`
}

// InvitedRoom contains the stripped state of a pending invite.
type InvitedRoom struct {
	InviteState StateSection `json:"invite_state"`
}

// TimelineSection contains timeline events from a sync response.
type TimelineSection struct {
	Events    []Event `json:"events"`
	PrevBatch string  `json:"prev_batch,omitempty"`
	Limited   bool    `json:"limited,omitempty"`
}

// StateSection contains state events from a sync response.
type StateSection struct {
	Events []Event `json:"events"`
}

// RoomMember is one entry of GET /rooms/{roomId}/members.
type RoomMember struct {
	UserID      ref.UserID
	DisplayName string
	Membership  string
	// Event is the full m.room.member event, kept so the caller can
	// read fields such as third_party_invite.
	Event Event
}

type roomMembersResponse struct {
	Chunk []Event `json:"chunk"`
}

type roomMemberContent struct {
	Membership  string `json:"membership"`
	DisplayName string `json:"displayname,omitempty"`
}

// InviteRequest is the body of POST /rooms/{roomId}/invite for a
// Matrix user.
type InviteRequest struct {
	UserID ref.UserID `json:"user_id"`
}

// ThirdPartyInviteRequest is the body of POST /rooms/{roomId}/invite
// for an address bound through an identity server.
type ThirdPartyInviteRequest struct {
	IDServer      string `json:"id_server"`
	IDAccessToken string `json:"id_access_token,omitempty"`
	Medium        string `json:"medium"`
	Address       string `json:"address"`
}

type sendEventResponse struct {
	EventID string `json:"event_id"`
}

type resolveAliasResponse struct {
	RoomID  ref.RoomID `json:"room_id"`
	Servers []string   `json:"servers"`
}
