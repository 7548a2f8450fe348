// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memberlist is the member-list component of the room viewer.
// It keeps a sorted display list of a room's joined and invited
// members, rebuilt from room state whenever a relevant event arrives.
// Bursts of events inside the refresh window collapse into a single
// rebuild.
//
// Lifecycle: New builds the initial list, Mount subscribes to room
// state, Close cancels any pending rebuild and releases the
// subscription. Nothing reaches OnChange after Close returns.
package memberlist

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/bureau-foundation/roomview/lib/clock"
	"github.com/bureau-foundation/roomview/lib/debounce"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roomstate"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/schema"
)

// DefaultRefreshWindow is the rebuild debounce window.
const DefaultRefreshWindow = 500 * time.Millisecond

// DefaultTruncateAt is the number of joined members shown before the
// overflow row.
const DefaultTruncateAt = 30

// Source is the room state the list reads. *roomstate.Store
// implements it.
type Source interface {
	Subscribe(handler roomstate.Handler) *roomstate.Subscription
	Roster(roomID ref.RoomID) roster.Snapshot
	ThirdPartyInvites(roomID ref.RoomID) []roster.ThirdPartyInviteEvent
}

// Config configures a MemberList. Zero values select the defaults.
type Config struct {
	Clock         clock.Clock
	RefreshWindow time.Duration

	// TruncateAt limits the joined section until ShowAll is called.
	// Negative disables truncation.
	TruncateAt int

	SearchMode roster.SearchMode

	// Language selects the collation for member names.
	Language language.Tag

	// Conference excludes conference bridge users. Nil excludes none.
	Conference roster.ConferenceFilter

	// OnChange runs after every rebuild and after ShowAll, on the
	// goroutine that performed it. It must not call Close.
	OnChange func()

	Logger *slog.Logger
}

// MemberList is the member-list component for one room. Safe for
// concurrent use.
type MemberList struct {
	source    Source
	roomID    ref.RoomID
	config    Config
	debouncer *debounce.Debouncer

	// notifyMu serializes OnChange with Close.
	notifyMu sync.Mutex

	mu           sync.Mutex
	sorter       *roster.Sorter
	snapshot     roster.Snapshot
	displayed    []ref.UserID
	displayedSet map[ref.UserID]bool
	pending      []roster.ThirdPartyInvite
	truncateAt   int
	rebuilds     int
	subscription *roomstate.Subscription
	closed       bool
}

// New builds the member list for roomID from the current state of
// source. The list does not follow changes until Mount is called.
func New(source Source, roomID ref.RoomID, config Config) *MemberList {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.RefreshWindow <= 0 {
		config.RefreshWindow = DefaultRefreshWindow
	}
	if config.TruncateAt == 0 {
		config.TruncateAt = DefaultTruncateAt
	}
	if config.SearchMode == "" {
		config.SearchMode = roster.SearchSubstring
	}
	if config.Language == (language.Tag{}) {
		config.Language = language.English
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	list := &MemberList{
		source:     source,
		roomID:     roomID,
		config:     config,
		sorter:     roster.NewSorter(config.Language),
		truncateAt: config.TruncateAt,
	}
	list.debouncer = debounce.New(config.Clock, config.RefreshWindow, list.rebuild)

	list.mu.Lock()
	list.rebuildLocked()
	list.mu.Unlock()
	return list
}

// Mount subscribes to room state. Calling it again is a no-op.
func (list *MemberList) Mount() {
	list.mu.Lock()
	defer list.mu.Unlock()
	if list.closed || list.subscription != nil {
		return
	}
	list.subscription = list.source.Subscribe(list.handle)
}

// Close cancels any pending rebuild and releases the subscription.
func (list *MemberList) Close() {
	list.mu.Lock()
	if list.closed {
		list.mu.Unlock()
		return
	}
	list.closed = true
	subscription := list.subscription
	list.subscription = nil
	list.mu.Unlock()

	list.debouncer.Close()
	if subscription != nil {
		subscription.Close()
	}
	// Wait out an OnChange already in flight.
	list.notifyMu.Lock()
	list.notifyMu.Unlock() //nolint:staticcheck // empty critical section is the barrier
}

// handle schedules a rebuild for events that can change the list.
func (list *MemberList) handle(storeEvent roomstate.Event) {
	if list.relevant(storeEvent) {
		list.debouncer.Trigger()
	}
}

func (list *MemberList) relevant(storeEvent roomstate.Event) bool {
	switch storeEvent.Kind {
	case roomstate.Members, roomstate.MemberName, roomstate.RoomArrived:
		return storeEvent.RoomID == list.roomID
	case roomstate.StateEvent:
		return storeEvent.RoomID == list.roomID &&
			storeEvent.EventType == schema.MatrixEventTypeThirdPartyInvite
	case roomstate.Presence:
		// Presence of users outside the list cannot reorder it.
		list.mu.Lock()
		defer list.mu.Unlock()
		return list.displayedSet[storeEvent.UserID]
	default:
		return false
	}
}

func (list *MemberList) rebuild() {
	list.mu.Lock()
	if list.closed {
		list.mu.Unlock()
		return
	}
	list.rebuildLocked()
	list.mu.Unlock()
	list.notify()
}

func (list *MemberList) rebuildLocked() {
	started := list.config.Clock.Now()
	snapshot := list.source.Roster(list.roomID)
	displayed := list.sorter.DisplayList(snapshot, list.config.Conference)

	displayedSet := make(map[ref.UserID]bool, len(displayed))
	for _, userID := range displayed {
		displayedSet[userID] = true
	}

	list.snapshot = snapshot
	list.displayed = displayed
	list.displayedSet = displayedSet
	list.pending = roster.PendingThirdPartyInvites(list.source.ThirdPartyInvites(list.roomID), snapshot)
	list.rebuilds++

	list.config.Logger.Debug("member list rebuilt",
		"room_id", list.roomID,
		"members", len(snapshot),
		"displayed", len(displayed),
		"pending_third_party", len(list.pending),
		"duration", list.config.Clock.Now().Sub(started),
	)
}

func (list *MemberList) notify() {
	if list.config.OnChange == nil {
		return
	}
	list.notifyMu.Lock()
	defer list.notifyMu.Unlock()
	list.mu.Lock()
	closed := list.closed
	list.mu.Unlock()
	if !closed {
		list.config.OnChange()
	}
}

// Rebuilds returns how many times the list has been built, including
// the initial build in New.
func (list *MemberList) Rebuilds() int {
	list.mu.Lock()
	defer list.mu.Unlock()
	return list.rebuilds
}

// Refresh rebuilds now, discarding any pending debounced rebuild.
func (list *MemberList) Refresh() {
	list.debouncer.Cancel()
	list.rebuild()
}
