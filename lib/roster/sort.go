// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// Sorter orders members for display. It owns a collator, which keeps
// scratch buffers, so a Sorter must not be used from more than one
// goroutine at a time.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter returns a Sorter that collates names for the given
// language. language.Und selects the root collation order.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{collator: collate.New(tag)}
}

// Compare returns a negative number when a sorts before b, a positive
// number when it sorts after, and zero when the two are tied.
//
// Members without presence sort after members with it. Currently
// active members sort first; among them higher power wins, then the
// collated name with any leading '@' removed. A missing name on
// either side ties. Members that are not currently active are
// ordered by most recent activity.
func (sorter *Sorter) Compare(a, b *Member) int {
	userA, userB := a.User, b.User
	switch {
	case userA == nil && userB == nil:
		return 0
	case userB == nil:
		return -1
	case userA == nil:
		return 1
	}

	if userA.CurrentlyActive != userB.CurrentlyActive {
		if userA.CurrentlyActive {
			return -1
		}
		return 1
	}

	if userA.CurrentlyActive {
		if a.PowerLevel != b.PowerLevel {
			return cmp.Compare(b.PowerLevel, a.PowerLevel)
		}
		if a.Name == "" || b.Name == "" {
			return 0
		}
		return sorter.collator.CompareString(stripSigil(a.Name), stripSigil(b.Name))
	}

	return userB.LastActiveTS().Compare(userA.LastActiveTS())
}

func stripSigil(name string) string {
	return strings.TrimPrefix(name, "@")
}

// ConferenceFilter reports whether a user is a transient conference
// bridge participant that must not be listed. A nil filter excludes
// nobody.
type ConferenceFilter func(ref.UserID) bool

// DisplayList returns the joined and invited members of the snapshot,
// minus conference participants, in display order. Ties keep user ID
// order so the result is deterministic.
func (sorter *Sorter) DisplayList(snapshot Snapshot, isConference ConferenceFilter) []ref.UserID {
	displayed := make([]ref.UserID, 0, len(snapshot))
	for userID, member := range snapshot {
		if member.Membership != event.MembershipJoin && member.Membership != event.MembershipInvite {
			continue
		}
		if isConference != nil && isConference(userID) {
			continue
		}
		displayed = append(displayed, userID)
	}

	slices.SortFunc(displayed, func(a, b ref.UserID) int {
		return strings.Compare(a.String(), b.String())
	})
	slices.SortStableFunc(displayed, func(a, b ref.UserID) int {
		return sorter.Compare(snapshot[a], snapshot[b])
	})
	return displayed
}
