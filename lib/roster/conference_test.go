// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"encoding/base64"
	"testing"

	"github.com/bureau-foundation/roomview/lib/ref"
)

func TestConferenceBridge(t *testing.T) {
	encodedRoom := base64.RawStdEncoding.EncodeToString([]byte("!room:example.org"))
	encodedText := base64.RawStdEncoding.EncodeToString([]byte("not a room"))

	tests := []struct {
		name   string
		domain string
		userID string
		want   bool
	}{
		{"bridge user", "conf.example.org", "@fs_" + encodedRoom + ":conf.example.org", true},
		{"any domain", "", "@fs_" + encodedRoom + ":elsewhere.org", true},
		{"wrong domain", "conf.example.org", "@fs_" + encodedRoom + ":elsewhere.org", false},
		{"ordinary user", "", "@alice:example.org", false},
		{"prefix without room", "", "@fs_" + encodedText + ":example.org", false},
		{"prefix with garbage", "", "@fs_!!!:example.org", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			filter := ConferenceBridge(test.domain)
			if got := filter(ref.MustParseUserID(test.userID)); got != test.want {
				t.Errorf("ConferenceBridge(%q)(%s) = %v, want %v", test.domain, test.userID, got, test.want)
			}
		})
	}
}
