// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
)

// RoomFilter builds an inline /sync filter scoped to one room. Presence
// is kept (the member list orders by it); account data is dropped.
// timelineLimit caps timeline events per response; zero leaves the
// server default.
func RoomFilter(roomID ref.RoomID, timelineLimit int) string {
	roomFilter := map[string]any{
		"rooms": []string{roomID.String()},
	}
	if timelineLimit > 0 {
		roomFilter["timeline"] = map[string]any{"limit": timelineLimit}
	}
	top := map[string]any{
		"room":         roomFilter,
		"presence":     map[string]any{"types": []string{string(schema.MatrixEventTypePresence)}},
		"account_data": map[string]any{"types": []string{}},
	}
	data, _ := json.Marshal(top)
	return string(data)
}
