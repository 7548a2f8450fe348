// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memberlist

import (
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roster"
)

// View is what the member pane renders for one query.
type View struct {
	// Joined holds the visible joined members in display order.
	Joined []*roster.Member

	// Overflow labels the hidden joined members ("and 5 others..."),
	// empty when nothing is hidden.
	Overflow string

	// Invited holds invited members in display order.
	Invited []*roster.Member

	// ThirdParty holds invites to external addresses that no member
	// has claimed yet. These are not filtered by the query.
	ThirdParty []roster.ThirdPartyInvite
}

// Joined returns the joined members matching query, in display order.
func (list *MemberList) Joined(query string) []*roster.Member {
	list.mu.Lock()
	defer list.mu.Unlock()
	return list.membersLocked(event.MembershipJoin, query)
}

// Invited returns the invited members matching query and every
// pending third-party invite.
func (list *MemberList) Invited(query string) ([]*roster.Member, []roster.ThirdPartyInvite) {
	list.mu.Lock()
	defer list.mu.Unlock()
	return list.membersLocked(event.MembershipInvite, query), append([]roster.ThirdPartyInvite(nil), list.pending...)
}

// View returns both sections for query with the joined section
// truncated until ShowAll.
func (list *MemberList) View(query string) View {
	list.mu.Lock()
	defer list.mu.Unlock()
	joined, overflow := roster.Truncate(list.membersLocked(event.MembershipJoin, query), list.truncateAt)
	return View{
		Joined:     joined,
		Overflow:   overflow,
		Invited:    list.membersLocked(event.MembershipInvite, query),
		ThirdParty: append([]roster.ThirdPartyInvite(nil), list.pending...),
	}
}

// ShowAll lifts the joined-section truncation.
func (list *MemberList) ShowAll() {
	list.mu.Lock()
	list.truncateAt = roster.NoLimit
	list.mu.Unlock()
	list.notify()
}

// Displayed returns the displayed user IDs in order.
func (list *MemberList) Displayed() []ref.UserID {
	list.mu.Lock()
	defer list.mu.Unlock()
	return append([]ref.UserID(nil), list.displayed...)
}

// Member returns the current record for a displayed or hidden member.
func (list *MemberList) Member(userID ref.UserID) (*roster.Member, bool) {
	list.mu.Lock()
	defer list.mu.Unlock()
	member, ok := list.snapshot[userID]
	return member, ok
}

func (list *MemberList) membersLocked(membership event.Membership, query string) []*roster.Member {
	var members []*roster.Member
	for _, userID := range list.displayed {
		member := list.snapshot[userID]
		if member.Membership != membership {
			continue
		}
		if !roster.MatchesQuery(member, query, list.config.SearchMode) {
			continue
		}
		members = append(members, member)
	}
	return members
}
