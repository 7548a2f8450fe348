// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"encoding/base64"
	"strings"

	"maunium.net/go/mautrix/id"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// ConferenceUserPrefix starts the localpart of every conference
// bridge user. The remainder is the base64 encoding of the room ID
// the bridge serves.
const ConferenceUserPrefix = "fs_"

// ConferenceBridge returns a filter recognizing conference bridge
// users hosted on domain. An empty domain accepts any server.
func ConferenceBridge(domain string) ConferenceFilter {
	return func(userID ref.UserID) bool {
		localpart, server, err := id.UserID(userID.String()).Parse()
		if err != nil || !strings.HasPrefix(localpart, ConferenceUserPrefix) {
			return false
		}
		if domain != "" && server != domain {
			return false
		}
		encoded := strings.TrimPrefix(localpart, ConferenceUserPrefix)
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(encoded)
		}
		if err != nil {
			return false
		}
		return strings.HasPrefix(string(decoded), "!")
	}
}
