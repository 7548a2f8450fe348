// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"context"
	"sync"
)

// SharedHistoryWarning is shown once per session before the first
// invite into a room whose history is visible to new members.
const SharedHistoryWarning = "Newly invited users will see the history of this room.\n" +
	"If you'd prefer invited users not to see messages that were sent before they joined, " +
	"turn off 'Share message history with new users' in the settings for this room."

// Session is the invite state of one login session: whether the
// shared history warning has been accepted, and the prompt currently
// awaiting an answer. Concurrent invite attempts share that prompt
// instead of opening one each. The zero value is ready to use.
type Session struct {
	mu       sync.Mutex
	accepted bool
	pending  *warningPrompt
}

type warningPrompt struct {
	done     chan struct{}
	accepted bool
	err      error
}

// WarningAccepted reports whether the warning was accepted this
// session.
func (session *Session) WarningAccepted() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.accepted
}

// confirmSharedHistory returns nil once the warning has been accepted.
// The first caller shows the dialog; callers arriving while it is open
// wait for the same answer. Declining fails every waiter and clears
// the prompt so the next attempt asks again.
func (session *Session) confirmSharedHistory(ctx context.Context, dialogs Dialogs) error {
	session.mu.Lock()
	if session.accepted {
		session.mu.Unlock()
		return nil
	}
	prompt := session.pending
	owner := prompt == nil
	if owner {
		prompt = &warningPrompt{done: make(chan struct{})}
		session.pending = prompt
	}
	session.mu.Unlock()

	if owner {
		accepted, err := dialogs.Confirm(ctx, "Warning", SharedHistoryWarning, "Invite")
		session.mu.Lock()
		prompt.accepted = accepted && err == nil
		prompt.err = err
		session.accepted = prompt.accepted
		session.pending = nil
		session.mu.Unlock()
		close(prompt.done)
	} else {
		select {
		case <-prompt.done:
		case <-ctx.Done():
			return abortedFailure(ctx.Err())
		}
	}

	switch {
	case prompt.err != nil:
		return abortedFailure(prompt.err)
	case !prompt.accepted:
		return abortedFailure(errDeclined)
	default:
		return nil
	}
}
