// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/tui"
)

// SearchMode selects how member search queries match.
type SearchMode string

const (
	// SearchSubstring matches a case-insensitive substring of the
	// display name or user ID.
	SearchSubstring SearchMode = "substring"
	// SearchFuzzy matches the query characters in order, not
	// necessarily adjacent, using fzf scoring.
	SearchFuzzy SearchMode = "fuzzy"
)

// ParseSearchMode validates a configured search mode. The empty
// string selects SearchSubstring.
func ParseSearchMode(raw string) (SearchMode, error) {
	switch SearchMode(raw) {
	case "", SearchSubstring:
		return SearchSubstring, nil
	case SearchFuzzy:
		return SearchFuzzy, nil
	default:
		return "", fmt.Errorf("roster: unknown search mode %q (want %q or %q)", raw, SearchSubstring, SearchFuzzy)
	}
}

// MatchesQuery reports whether the member's name or user ID matches
// the query. An empty query matches every member.
func MatchesQuery(member *Member, query string, mode SearchMode) bool {
	if query == "" {
		return true
	}
	if mode == SearchFuzzy {
		pattern := []rune(query)
		return tui.FuzzyMatch(member.Name, pattern, nil).Matched() ||
			tui.FuzzyMatch(member.UserID.String(), pattern, nil).Matched()
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(member.Name), query) ||
		strings.Contains(strings.ToLower(member.UserID.String()), query)
}

// ThirdPartyInviteEvent is an m.room.third_party_invite state event
// as room state holds it.
type ThirdPartyInviteEvent struct {
	Token   string
	Sender  ref.UserID
	Content schema.ThirdPartyInviteContent
}

// PendingThirdPartyInvites returns the third-party invites that have
// not been claimed by a member event. Events missing a required key
// are not valid invites and are skipped. The result is ordered by
// display name, then token.
func PendingThirdPartyInvites(events []ThirdPartyInviteEvent, snapshot Snapshot) []ThirdPartyInvite {
	claimed := make(map[string]bool)
	for _, member := range snapshot {
		if member.ThirdPartyToken != "" {
			claimed[member.ThirdPartyToken] = true
		}
	}

	var pending []ThirdPartyInvite
	for _, invite := range events {
		if !invite.Content.IsValid() || claimed[invite.Token] {
			continue
		}
		pending = append(pending, ThirdPartyInvite{
			Token:       invite.Token,
			DisplayName: invite.Content.DisplayName,
			Sender:      invite.Sender,
		})
	}
	slices.SortFunc(pending, func(a, b ThirdPartyInvite) int {
		if order := strings.Compare(a.DisplayName, b.DisplayName); order != 0 {
			return order
		}
		return strings.Compare(a.Token, b.Token)
	})
	return pending
}

// NoLimit disables truncation.
const NoLimit = -1

// Truncate returns the first limit entries and, when entries were
// cut, the label for the overflow row ("and 3 others..."). A
// negative limit returns everything.
func Truncate[T any](entries []T, limit int) ([]T, string) {
	if limit < 0 || len(entries) <= limit {
		return entries, ""
	}
	return entries[:limit], OverflowLabel(len(entries) - limit)
}

// OverflowLabel describes count hidden entries.
func OverflowLabel(count int) string {
	if count == 1 {
		return "and 1 other..."
	}
	return fmt.Sprintf("and %d others...", count)
}
