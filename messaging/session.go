// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
)

// Session is the set of authenticated Matrix operations the room
// viewer performs. *DirectSession is the production implementation.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID.
	UserID() ref.UserID

	// Close releases the session's resources. Idempotent.
	Close() error

	// WhoAmI validates the session.
	WhoAmI(ctx context.Context) (*WhoAmIResponse, error)

	// ResolveAlias resolves a room alias to a room ID.
	ResolveAlias(ctx context.Context, alias ref.RoomAlias) (ref.RoomID, error)

	// GetStateEvent fetches one state event's content.
	GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error)

	// GetRoomState fetches all current state events of a room.
	GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error)

	// GetRoomMembers returns the m.room.member state of a room.
	GetRoomMembers(ctx context.Context, roomID ref.RoomID) ([]RoomMember, error)

	// InviteUser invites a Matrix user to a room.
	InviteUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error

	// InviteThirdParty invites a third-party address (email) through
	// an identity server.
	InviteThirdParty(ctx context.Context, roomID ref.RoomID, request ThirdPartyInviteRequest) error

	// SendMessage sends an m.room.message. Returns the event ID.
	SendMessage(ctx context.Context, roomID ref.RoomID, content schema.MessageContent) (string, error)

	// Sync performs one /sync request.
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
}

var _ Session = (*DirectSession)(nil)
