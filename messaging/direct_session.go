// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/secret"
)

// DirectSession is an authenticated Matrix session. The access token
// lives in a secret.Buffer; call Close when done.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
	deviceID    string

	transactionCounter atomic.Int64
}

// UserID returns the fully-qualified Matrix user ID.
func (s *DirectSession) UserID() ref.UserID { return s.userID }

// DeviceID returns the device ID from login, or "" for token sessions.
func (s *DirectSession) DeviceID() string { return s.deviceID }

// CloseIdleConnections drops pooled connections on the shared client.
func (s *DirectSession) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Close zeroes and releases the access token. Idempotent.
func (s *DirectSession) Close() error {
	if s.accessToken == nil {
		return nil
	}
	return s.accessToken.Close()
}

// WhoAmI validates the session and returns the server's view of it.
func (s *DirectSession) WhoAmI(ctx context.Context) (*WhoAmIResponse, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: whoami failed: %w", err)
	}
	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse whoami response: %w", err)
	}
	if s.userID.IsZero() {
		s.userID = response.UserID
	}
	return &response, nil
}

// ResolveAlias resolves a room alias (e.g., "#general:example.org") to a room ID.
func (s *DirectSession) ResolveAlias(ctx context.Context, alias ref.RoomAlias) (ref.RoomID, error) {
	path := "/_matrix/client/v3/directory/room/" + url.PathEscape(alias.String())
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("messaging: resolve alias %q failed: %w", alias, err)
	}
	var response resolveAliasResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.RoomID{}, fmt.Errorf("messaging: failed to parse resolve alias response: %w", err)
	}
	return response.RoomID, nil
}

// GetStateEvent fetches the content of one state event.
func (s *DirectSession) GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType.String()),
		url.PathEscape(stateKey),
	)
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get state %s in %s failed: %w", eventType, roomID, err)
	}
	return json.RawMessage(body), nil
}

// GetRoomState fetches all current state events of a room.
func (s *DirectSession) GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state", url.PathEscape(roomID.String()))
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room state for %s failed: %w", roomID, err)
	}
	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse room state response: %w", err)
	}
	return events, nil
}

// GetRoomMembers returns the members of a room. Entries whose state
// key is not a valid user ID are skipped.
func (s *DirectSession) GetRoomMembers(ctx context.Context, roomID ref.RoomID) ([]RoomMember, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/members", url.PathEscape(roomID.String()))
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room members for %s failed: %w", roomID, err)
	}
	var response roomMembersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse room members response: %w", err)
	}

	members := make([]RoomMember, 0, len(response.Chunk))
	for _, event := range response.Chunk {
		if event.StateKey == nil {
			continue
		}
		userID, err := ref.ParseUserID(*event.StateKey)
		if err != nil {
			s.client.logger.Debug("skipping member event with invalid state key",
				"room_id", roomID,
				"state_key", *event.StateKey,
				"error", err,
			)
			continue
		}
		var content roomMemberContent
		if err := json.Unmarshal(event.Content, &content); err != nil {
			return nil, fmt.Errorf("messaging: parsing member content for %s: %w", userID, err)
		}
		members = append(members, RoomMember{
			UserID:      userID,
			DisplayName: content.DisplayName,
			Membership:  content.Membership,
			Event:       event,
		})
	}
	return members, nil
}

// InviteUser invites a Matrix user to a room.
func (s *DirectSession) InviteUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/invite", url.PathEscape(roomID.String()))
	_, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, InviteRequest{UserID: userID})
	if err != nil {
		return fmt.Errorf("messaging: invite %s to %s failed: %w", userID, roomID, err)
	}
	return nil
}

// InviteThirdParty invites an address bound through an identity server.
func (s *DirectSession) InviteThirdParty(ctx context.Context, roomID ref.RoomID, request ThirdPartyInviteRequest) error {
	if request.IDServer == "" {
		return fmt.Errorf("messaging: identity server is required to invite %s", request.Address)
	}
	if request.Medium == "" {
		request.Medium = "email"
	}
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/invite", url.PathEscape(roomID.String()))
	if _, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, request); err != nil {
		return fmt.Errorf("messaging: invite %s to %s failed: %w", request.Address, roomID, err)
	}
	return nil
}

// SendMessage sends an m.room.message and returns the event ID.
func (s *DirectSession) SendMessage(ctx context.Context, roomID ref.RoomID, content schema.MessageContent) (string, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(schema.MatrixEventTypeMessage.String()),
		url.PathEscape(s.nextTransactionID()),
	)
	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return "", fmt.Errorf("messaging: send message to %s failed: %w", roomID, err)
	}
	var response sendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse send response: %w", err)
	}
	return response.EventID, nil
}

// Sync performs one /sync request. Leave options.Since empty for the
// initial sync; set Timeout and SetTimeout to long-poll.
func (s *DirectSession) Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error) {
	query := url.Values{}
	if options.Since != "" {
		query.Set("since", options.Since)
	}
	if options.SetTimeout {
		query.Set("timeout", strconv.Itoa(options.Timeout))
	}
	if options.Filter != "" {
		query.Set("filter", options.Filter)
	}

	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/sync", s.accessToken, nil, query)
	if err != nil {
		return nil, fmt.Errorf("messaging: sync failed: %w", err)
	}
	var response SyncResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse sync response: %w", err)
	}
	return &response, nil
}

// nextTransactionID returns "roomview-<ms>-<counter>", unique across
// restarts of the same device.
func (s *DirectSession) nextTransactionID() string {
	counter := s.transactionCounter.Add(1)
	return fmt.Sprintf("roomview-%d-%d", time.Now().UnixMilli(), counter)
}
