// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// Inviter submits one invite.
type Inviter interface {
	Invite(ctx context.Context, roomID ref.RoomID, address string) error
}

// RoomState answers the one room-state question the workflow asks.
// *roomstate.Store implements it.
type RoomState interface {
	HistoryVisibility(roomID ref.RoomID) event.HistoryVisibility
}

// Dialogs presents modal dialogs. Confirm blocks until the user
// answers; ShowError returns without waiting.
type Dialogs interface {
	Confirm(ctx context.Context, title, description, button string) (bool, error)
	ShowError(title, description string)
}

// Permission decides whether the signed-in user may invite into a
// room. MatrixPermission implements it.
type Permission interface {
	CanInvite(ctx context.Context, roomID ref.RoomID) (bool, error)
}

// Config configures a Workflow.
type Config struct {
	Inviter Inviter
	State   RoomState
	Dialogs Dialogs

	// Session carries the shared history warning state. Required so
	// that every workflow of a login shares it.
	Session *Session

	// Guest marks a guest account, which may not invite.
	Guest bool

	// Permission, when set, is asked before anything is submitted. A
	// failed check is logged and the homeserver decides.
	Permission Permission

	// Limiter paces bulk submissions. Nil means unlimited.
	Limiter *rate.Limiter

	// OnInviting is told when a single invite starts and finishes,
	// for a progress indicator.
	OnInviting func(inviting bool)

	Logger *slog.Logger
}

// Workflow runs invites for one user session.
type Workflow struct {
	config Config
	logger *slog.Logger
}

// NewWorkflow validates config and returns a Workflow.
func NewWorkflow(config Config) (*Workflow, error) {
	if config.Inviter == nil || config.State == nil || config.Dialogs == nil {
		return nil, fmt.Errorf("invite: workflow requires an inviter, room state and dialogs")
	}
	if config.Session == nil {
		return nil, fmt.Errorf("invite: workflow requires a session")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{config: config, logger: logger}, nil
}

// Result is the outcome for one address. Err is nil on success and a
// *Failure otherwise.
type Result struct {
	Address string
	Err     error
}

// Invite runs the whole workflow for the text a user entered. Guest
// accounts, input without a single valid address and users below the
// room's invite level are refused with an error dialog. In a room with shared history the warning must be
// accepted first. One address is submitted directly with failures
// reported through Dialogs.ShowError; several go through Bulk.
//
// The returned error is a *Failure when the workflow stopped before
// submitting, or when a single submission failed.
func (workflow *Workflow) Invite(ctx context.Context, roomID ref.RoomID, input string) ([]Result, error) {
	if workflow.config.Guest {
		failure := guestFailure()
		workflow.config.Dialogs.ShowError(failure.Title, failure.Description)
		return nil, failure
	}

	addresses := SplitAddresses(strings.TrimSpace(input))
	valid := 0
	for _, address := range addresses {
		if AddressType(address) != Unknown {
			valid++
		}
	}
	if valid == 0 {
		failure := validationFailure("", errMalformed)
		workflow.config.Dialogs.ShowError(failure.Title, failure.Description)
		return nil, failure
	}

	if workflow.config.Permission != nil {
		allowed, err := workflow.config.Permission.CanInvite(ctx, roomID)
		switch {
		case err != nil:
			workflow.logger.Warn("checking invite permission failed", "room_id", roomID, "error", err)
		case !allowed:
			failure := forbiddenFailure("", errNoPermission)
			workflow.config.Dialogs.ShowError(failure.Title, failure.Description)
			return nil, failure
		}
	}

	if workflow.config.State.HistoryVisibility(roomID) == event.HistoryVisibilityShared {
		if err := workflow.config.Session.confirmSharedHistory(ctx, workflow.config.Dialogs); err != nil {
			return nil, err
		}
	}

	if len(addresses) == 1 {
		return workflow.single(ctx, roomID, addresses[0])
	}
	return workflow.Bulk(ctx, roomID, addresses), nil
}

func (workflow *Workflow) single(ctx context.Context, roomID ref.RoomID, address string) ([]Result, error) {
	if workflow.config.OnInviting != nil {
		workflow.config.OnInviting(true)
		defer workflow.config.OnInviting(false)
	}

	err := workflow.config.Inviter.Invite(ctx, roomID, address)
	if err == nil {
		workflow.logger.Info("invited", "room_id", roomID, "address", address)
		return []Result{{Address: address}}, nil
	}

	failure := classify(address, err)
	workflow.logger.Error("failed to invite",
		"room_id", roomID,
		"address", address,
		"category", failure.Category,
		"error", err,
	)
	if failure.Category != CategoryAborted {
		workflow.config.Dialogs.ShowError(failure.Title, failure.Description)
	}
	return []Result{{Address: address, Err: failure}}, failure
}

// Bulk validates every address individually and submits the valid
// ones concurrently, paced by the configured limiter. A failure never
// stops the other submissions. Results are in input order.
func (workflow *Workflow) Bulk(ctx context.Context, roomID ref.RoomID, addresses []string) []Result {
	results := make([]Result, len(addresses))
	var group sync.WaitGroup
	for index, address := range addresses {
		results[index].Address = address
		if AddressType(address) == Unknown {
			results[index].Err = validationFailure(address, fmt.Errorf("unrecognised address %q", address))
			continue
		}
		group.Add(1)
		go func() {
			defer group.Done()
			results[index].Err = workflow.submit(ctx, roomID, address)
		}()
	}
	group.Wait()

	var failed []string
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result.Address+": "+describe(result.Err))
		}
	}
	workflow.logger.Info("bulk invite finished",
		"room_id", roomID,
		"addresses", len(addresses),
		"failed", len(failed),
	)
	if len(failed) > 0 {
		workflow.config.Dialogs.ShowError("Failed to invite", strings.Join(failed, "\n"))
	}
	return results
}

func (workflow *Workflow) submit(ctx context.Context, roomID ref.RoomID, address string) error {
	if workflow.config.Limiter != nil {
		if err := workflow.config.Limiter.Wait(ctx); err != nil {
			return abortedFailure(err)
		}
	}
	if err := workflow.config.Inviter.Invite(ctx, roomID, address); err != nil {
		workflow.logger.Warn("bulk invite failed", "room_id", roomID, "address", address, "error", err)
		return classify(address, err)
	}
	return nil
}

func describe(err error) string {
	var failure *Failure
	if errors.As(err, &failure) {
		if failure.Category == CategoryForbidden {
			return "permission denied"
		}
		if failure.Description != "" && failure.Category != CategoryValidation {
			return failure.Description
		}
		return failure.Err.Error()
	}
	return err.Error()
}
