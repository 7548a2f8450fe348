// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// GetState reads a typed state event:
//
//	powerLevels, err := messaging.GetState[schema.PowerLevels](ctx, session, roomID, schema.MatrixEventTypePowerLevels, "")
//
// A missing event surfaces as a wrapped M_NOT_FOUND MatrixError.
func GetState[T any](ctx context.Context, session Session, roomID ref.RoomID, eventType ref.EventType, stateKey string) (T, error) {
	var zero T
	content, err := session.GetStateEvent(ctx, roomID, eventType, stateKey)
	if err != nil {
		return zero, fmt.Errorf("reading %s[%q] from room %s: %w", eventType, stateKey, roomID, err)
	}
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return zero, fmt.Errorf("unmarshaling %s from room %s: %w", eventType, roomID, err)
	}
	return result, nil
}

// ResolveRoom accepts a room ID ("!id:server") or alias ("#alias:server")
// and returns the room ID, resolving aliases through the homeserver.
func ResolveRoom(ctx context.Context, session Session, room string) (ref.RoomID, error) {
	if len(room) > 0 && room[0] == '#' {
		alias, err := ref.ParseRoomAlias(room)
		if err != nil {
			return ref.RoomID{}, err
		}
		return session.ResolveAlias(ctx, alias)
	}
	return ref.ParseRoomID(room)
}
