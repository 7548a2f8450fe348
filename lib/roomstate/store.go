// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/clock"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/messaging"
)

// DefaultTimelineCapacity is the number of messages kept per room when
// Config.TimelineCapacity is zero.
const DefaultTimelineCapacity = 500

// Config configures a Store.
type Config struct {
	// Clock stamps presence updates. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives decode failures. Defaults to slog.Default().
	Logger *slog.Logger

	// TimelineCapacity bounds the messages kept per room.
	TimelineCapacity int
}

// Store is the in-memory state of every room the client has seen. It
// is safe for concurrent use.
type Store struct {
	clock            clock.Clock
	logger           *slog.Logger
	timelineCapacity int

	mu          sync.RWMutex
	rooms       map[ref.RoomID]*roomState
	users       map[ref.UserID]*roster.User
	subscribers map[uint64]Handler
	nextID      uint64
}

type memberState struct {
	membership      event.Membership
	displayName     string
	thirdPartyToken string
}

type roomState struct {
	name              string
	members           map[ref.UserID]memberState
	powerLevels       *schema.PowerLevels
	historyVisibility event.HistoryVisibility
	thirdPartyInvites map[string]roster.ThirdPartyInviteEvent
	timeline          []messaging.Event
}

func newRoomState() *roomState {
	return &roomState{
		members:           make(map[ref.UserID]memberState),
		thirdPartyInvites: make(map[string]roster.ThirdPartyInviteEvent),
	}
}

// New creates an empty Store.
func New(config Config) *Store {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.TimelineCapacity <= 0 {
		config.TimelineCapacity = DefaultTimelineCapacity
	}
	return &Store{
		clock:            config.Clock,
		logger:           config.Logger,
		timelineCapacity: config.TimelineCapacity,
		rooms:            make(map[ref.RoomID]*roomState),
		users:            make(map[ref.UserID]*roster.User),
		subscribers:      make(map[uint64]Handler),
	}
}

// Subscribe registers handler for every subsequent store event.
func (store *Store) Subscribe(handler Handler) *Subscription {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.nextID++
	store.subscribers[store.nextID] = handler
	return &Subscription{store: store, id: store.nextID}
}

func (store *Store) unsubscribe(id uint64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.subscribers, id)
}

// emit delivers events to the current subscribers in registration
// order. Must be called without the lock held.
func (store *Store) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	store.mu.RLock()
	ids := make([]uint64, 0, len(store.subscribers))
	for id := range store.subscribers {
		ids = append(ids, id)
	}
	store.mu.RUnlock()
	slices.Sort(ids)

	for _, storeEvent := range events {
		for _, id := range ids {
			store.mu.RLock()
			handler, ok := store.subscribers[id]
			store.mu.RUnlock()
			if ok {
				handler(storeEvent)
			}
		}
	}
}

// LoadRoom applies the full state of a room, as returned by
// GET /rooms/{roomId}/state.
func (store *Store) LoadRoom(roomID ref.RoomID, stateEvents []messaging.Event) {
	store.mu.Lock()
	room, arrived := store.roomLocked(roomID)
	var events []Event
	for _, stateEvent := range stateEvents {
		events = append(events, store.applyStateLocked(roomID, room, stateEvent)...)
	}
	store.mu.Unlock()

	if arrived {
		events = append(events, Event{Kind: RoomArrived, RoomID: roomID})
	}
	store.emit(events)
}

// ApplySync applies one /sync response: state and timeline of joined
// and left rooms, then presence.
func (store *Store) ApplySync(response *messaging.SyncResponse) {
	var events []Event

	store.mu.Lock()
	for _, section := range []map[ref.RoomID]messaging.JoinedRoom{response.Rooms.Join, response.Rooms.Leave} {
		for roomID, joined := range section {
			room, arrived := store.roomLocked(roomID)
			for _, stateEvent := range joined.State.Events {
				events = append(events, store.applyStateLocked(roomID, room, stateEvent)...)
			}
			appended := false
			for _, timelineEvent := range joined.Timeline.Events {
				if timelineEvent.IsState() {
					events = append(events, store.applyStateLocked(roomID, room, timelineEvent)...)
					continue
				}
				if timelineEvent.Type == schema.MatrixEventTypeMessage {
					store.appendTimelineLocked(room, timelineEvent)
					appended = true
				}
			}
			if appended {
				events = append(events, Event{Kind: Timeline, RoomID: roomID})
			}
			if arrived {
				events = append(events, Event{Kind: RoomArrived, RoomID: roomID})
			}
		}
	}
	for _, presenceEvent := range response.Presence.Events {
		if presenceEvent.Type != schema.MatrixEventTypePresence {
			continue
		}
		if changed, ok := store.applyPresenceLocked(presenceEvent); ok {
			events = append(events, changed)
		}
	}
	store.mu.Unlock()

	store.emit(events)
}

// roomLocked returns the state for roomID, creating it if needed. The
// second result reports whether the room is new.
func (store *Store) roomLocked(roomID ref.RoomID) (*roomState, bool) {
	if room, ok := store.rooms[roomID]; ok {
		return room, false
	}
	room := newRoomState()
	store.rooms[roomID] = room
	return room, true
}

func (store *Store) appendTimelineLocked(room *roomState, message messaging.Event) {
	room.timeline = append(room.timeline, message)
	if excess := len(room.timeline) - store.timelineCapacity; excess > 0 {
		room.timeline = slices.Clone(room.timeline[excess:])
	}
}

func (store *Store) applyStateLocked(roomID ref.RoomID, room *roomState, stateEvent messaging.Event) []Event {
	if !stateEvent.IsState() {
		return nil
	}
	stateKey := *stateEvent.StateKey

	switch stateEvent.Type {
	case schema.MatrixEventTypeMember:
		return store.applyMemberLocked(roomID, room, stateKey, stateEvent)

	case schema.MatrixEventTypePowerLevels:
		var powerLevels schema.PowerLevels
		if !store.decode(roomID, stateEvent, &powerLevels) {
			return nil
		}
		room.powerLevels = &powerLevels

	case schema.MatrixEventTypeHistoryVisibility:
		var content event.HistoryVisibilityEventContent
		if !store.decode(roomID, stateEvent, &content) {
			return nil
		}
		room.historyVisibility = content.HistoryVisibility

	case schema.MatrixEventTypeThirdPartyInvite:
		var content schema.ThirdPartyInviteContent
		if !store.decode(roomID, stateEvent, &content) {
			return nil
		}
		sender, _ := ref.ParseUserID(stateEvent.Sender)
		room.thirdPartyInvites[stateKey] = roster.ThirdPartyInviteEvent{
			Token:   stateKey,
			Sender:  sender,
			Content: content,
		}

	case schema.MatrixEventTypeRoomName:
		var content schema.RoomNameContent
		if !store.decode(roomID, stateEvent, &content) {
			return nil
		}
		room.name = content.Name
	}

	return []Event{{Kind: StateEvent, RoomID: roomID, EventType: stateEvent.Type}}
}

func (store *Store) applyMemberLocked(roomID ref.RoomID, room *roomState, stateKey string, stateEvent messaging.Event) []Event {
	userID, err := ref.ParseUserID(stateKey)
	if err != nil {
		store.logger.Warn("ignoring member event with invalid state key",
			"room_id", roomID, "state_key", stateKey, "error", err)
		return nil
	}
	var content event.MemberEventContent
	if !store.decode(roomID, stateEvent, &content) {
		return nil
	}

	updated := memberState{
		membership:  content.Membership,
		displayName: content.Displayname,
	}
	if content.ThirdPartyInvite != nil {
		updated.thirdPartyToken = content.ThirdPartyInvite.Signed.Token
	}
	previous, existed := room.members[userID]
	room.members[userID] = updated

	var events []Event
	if !existed || previous.membership != updated.membership {
		events = append(events, Event{Kind: Members, RoomID: roomID, UserID: userID, Membership: updated.membership})
	}
	if existed && previous.displayName != updated.displayName {
		// Members sharing either name may gain or lose their
		// disambiguation suffix.
		events = append(events, Event{Kind: MemberName, RoomID: roomID, UserID: userID})
		for otherID, other := range room.members {
			if otherID == userID || other.displayName == "" {
				continue
			}
			if other.displayName == previous.displayName || other.displayName == updated.displayName {
				events = append(events, Event{Kind: MemberName, RoomID: roomID, UserID: otherID})
			}
		}
	}
	return events
}

func (store *Store) applyPresenceLocked(presenceEvent messaging.Event) (Event, bool) {
	userID, err := ref.ParseUserID(presenceEvent.Sender)
	if err != nil {
		store.logger.Warn("ignoring presence event with invalid sender",
			"sender", presenceEvent.Sender, "error", err)
		return Event{}, false
	}
	var content event.PresenceEventContent
	if err := json.Unmarshal(presenceEvent.Content, &content); err != nil {
		store.logger.Warn("ignoring malformed presence event",
			"user_id", userID, "error", err)
		return Event{}, false
	}
	store.users[userID] = &roster.User{
		UserID:          userID,
		CurrentlyActive: content.CurrentlyActive,
		LastActiveAgo:   time.Duration(content.LastActiveAgo) * time.Millisecond,
		LastPresenceTS:  store.clock.Now(),
	}
	return Event{Kind: Presence, UserID: userID}, true
}

func (store *Store) decode(roomID ref.RoomID, stateEvent messaging.Event, target any) bool {
	if len(stateEvent.Content) == 0 {
		return true
	}
	if err := json.Unmarshal(stateEvent.Content, target); err != nil {
		store.logger.Warn("ignoring malformed state event",
			"room_id", roomID,
			"event_type", stateEvent.Type,
			"error", fmt.Errorf("decoding %s content: %w", stateEvent.Type, err),
		)
		return false
	}
	return true
}
