// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "encoding/json"

// ThirdPartyInviteContent is the content of an m.room.third_party_invite
// state event. The state key is the invite token; the member event
// that later claims the invite carries the same token under
// content.third_party_invite.signed.token.
//
// The struct keeps the raw key set so validity can be judged on key
// presence rather than value: a redacted or malformed event lacks one
// of the required keys.
type ThirdPartyInviteContent struct {
	DisplayName    string `json:"display_name"`
	KeyValidityURL string `json:"key_validity_url"`
	PublicKey      string `json:"public_key"`

	present map[string]bool
}

// thirdPartyInviteRequiredKeys must all be present for the invite to be
// shown as pending.
var thirdPartyInviteRequiredKeys = []string{"key_validity_url", "public_key", "display_name"}

// UnmarshalJSON decodes the content and records which top-level keys
// were present.
func (content *ThirdPartyInviteContent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	type plain ThirdPartyInviteContent
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*content = ThirdPartyInviteContent(decoded)
	content.present = make(map[string]bool, len(raw))
	for key := range raw {
		content.present[key] = true
	}
	return nil
}

// IsValid reports whether every required key is present. Content built
// in Go rather than decoded is judged on non-empty fields.
func (content ThirdPartyInviteContent) IsValid() bool {
	if content.present == nil {
		return content.DisplayName != "" && content.KeyValidityURL != "" && content.PublicKey != ""
	}
	for _, key := range thirdPartyInviteRequiredKeys {
		if !content.present[key] {
			return false
		}
	}
	return true
}
