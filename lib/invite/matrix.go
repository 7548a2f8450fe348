// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/messaging"
)

// MatrixInviter submits invites through a Matrix session: user IDs
// with /invite, email addresses through the identity server.
type MatrixInviter struct {
	Session messaging.Session

	// IdentityServer is the host of the identity server used for
	// email invites. Email invites fail when it is empty.
	IdentityServer string

	// IdentityAccessToken authenticates to the identity server, if
	// it requires it.
	IdentityAccessToken string
}

// Invite implements Inviter.
func (inviter MatrixInviter) Invite(ctx context.Context, roomID ref.RoomID, address string) error {
	switch AddressType(address) {
	case MatrixID:
		userID, err := ref.ParseUserID(address)
		if err != nil {
			return validationFailure(address, err)
		}
		return inviter.Session.InviteUser(ctx, roomID, userID)
	case Email:
		if inviter.IdentityServer == "" {
			return &Failure{
				Category:    CategoryValidation,
				Address:     address,
				Title:       "Invite Error",
				Description: "No identity server is configured, so email addresses cannot be invited.",
				Err:         fmt.Errorf("no identity server for email invite"),
			}
		}
		return inviter.Session.InviteThirdParty(ctx, roomID, messaging.ThirdPartyInviteRequest{
			IDServer:      inviter.IdentityServer,
			IDAccessToken: inviter.IdentityAccessToken,
			Medium:        "email",
			Address:       address,
		})
	default:
		return validationFailure(address, fmt.Errorf("unrecognised address %q", address))
	}
}

// MatrixPermission reads the room's m.room.power_levels to decide
// whether UserID may invite. A room without power levels lets every
// member invite.
type MatrixPermission struct {
	Session messaging.Session
	UserID  ref.UserID
}

// CanInvite implements Permission.
func (permission MatrixPermission) CanInvite(ctx context.Context, roomID ref.RoomID) (bool, error) {
	powerLevels, err := messaging.GetState[schema.PowerLevels](ctx, permission.Session, roomID, schema.MatrixEventTypePowerLevels, "")
	if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("invite: %w", err)
	}
	return powerLevels.CanInvite(permission.UserID.String()), nil
}
