// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/messaging"
)

// maxSyncRetries is the number of consecutive /sync failures allowed
// before Run returns. Retries use a short server-side timeout so the
// HTTP round-trip itself provides backoff.
const maxSyncRetries = 5

// longPollTimeout is the server-side hold in milliseconds for normal
// /sync calls.
const longPollTimeout = 30000

// retryTimeout is the server-side hold in milliseconds after a /sync
// error.
const retryTimeout = 1000

// SyncerConfig configures a Syncer.
type SyncerConfig struct {
	Session messaging.Session
	Store   *Store

	// RoomID scopes the /sync filter. Presence is always included.
	RoomID ref.RoomID

	// TimelineLimit caps timeline events per response. Zero leaves
	// the server default.
	TimelineLimit int

	// Since resumes from a stored position. Empty starts with an
	// initial sync that returns the room's full state.
	Since string

	Logger *slog.Logger
}

// Syncer feeds a Store from the /sync long-poll stream. It is not safe
// for concurrent use; run one Syncer per Store.
type Syncer struct {
	session   messaging.Session
	store     *Store
	roomID    ref.RoomID
	filter    string
	nextBatch string
	logger    *slog.Logger
}

// NewSyncer creates a Syncer. Run starts it.
func NewSyncer(config SyncerConfig) (*Syncer, error) {
	if config.Session == nil || config.Store == nil {
		return nil, fmt.Errorf("roomstate: syncer requires a session and a store")
	}
	if config.RoomID.IsZero() {
		return nil, fmt.Errorf("roomstate: syncer requires a room ID")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		session:   config.Session,
		store:     config.Store,
		roomID:    config.RoomID,
		filter:    messaging.RoomFilter(config.RoomID, config.TimelineLimit),
		nextBatch: config.Since,
		logger:    logger,
	}, nil
}

// Position returns the next_batch token of the last applied response.
func (syncer *Syncer) Position() string {
	return syncer.nextBatch
}

// Run long-polls /sync and applies every response to the store until
// ctx is cancelled or /sync fails more than maxSyncRetries times in a
// row. The initial sync, when no position is stored, does not wait.
func (syncer *Syncer) Run(ctx context.Context) error {
	var syncRetries int
	for {
		timeout := longPollTimeout
		switch {
		case syncRetries > 0:
			timeout = retryTimeout
		case syncer.nextBatch == "":
			timeout = 0
		}

		response, err := syncer.session.Sync(ctx, messaging.SyncOptions{
			Since:      syncer.nextBatch,
			SetTimeout: true,
			Timeout:    timeout,
			Filter:     syncer.filter,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			syncRetries++
			// Connection resets often leave a poisoned socket in the
			// pool; the next attempt should dial fresh.
			if closer, ok := syncer.session.(interface{ CloseIdleConnections() }); ok {
				closer.CloseIdleConnections()
			}
			if syncRetries > maxSyncRetries {
				return fmt.Errorf("roomstate: sync failed %d consecutive times for room %s: %w",
					syncRetries, syncer.roomID, err)
			}
			syncer.logger.Debug("sync error, retrying",
				"room_id", syncer.roomID,
				"attempt", syncRetries,
				"max_attempts", maxSyncRetries,
				"error", err,
			)
			continue
		}

		syncRetries = 0
		syncer.nextBatch = response.NextBatch
		syncer.store.ApplySync(response)
	}
}
