// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/bureau-foundation/roomview/lib/ref"

// Standard Matrix event types consumed by the room viewer.
const (
	MatrixEventTypeMember            ref.EventType = "m.room.member"
	MatrixEventTypePowerLevels       ref.EventType = "m.room.power_levels"
	MatrixEventTypeHistoryVisibility ref.EventType = "m.room.history_visibility"
	MatrixEventTypeThirdPartyInvite  ref.EventType = "m.room.third_party_invite"
	MatrixEventTypeRoomName          ref.EventType = "m.room.name"
	MatrixEventTypeMessage           ref.EventType = "m.room.message"
	MatrixEventTypePresence          ref.EventType = "m.presence"
)

// FormatCustomHTML is the only formatted_body format the Matrix spec
// defines for m.room.message.
const FormatCustomHTML = "org.matrix.custom.html"

// MessageContent is the subset of m.room.message content the viewer
// renders and sends.
type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// NewTextMessage returns m.text content. formattedBody is attached as
// org.matrix.custom.html when non-empty.
func NewTextMessage(body, formattedBody string) MessageContent {
	content := MessageContent{MsgType: "m.text", Body: body}
	if formattedBody != "" {
		content.Format = FormatCustomHTML
		content.FormattedBody = formattedBody
	}
	return content
}

// RoomNameContent is the content of m.room.name.
type RoomNameContent struct {
	Name string `json:"name"`
}
