// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roomview/lib/tui"
)

// sender is the part of *tea.Program the bridge uses.
type sender interface {
	Send(message tea.Msg)
}

var errNoProgram = errors.New("roomui: no program attached")

// dialogRequestMsg asks the model to show a dialog. reply, when set,
// receives the result; it must be buffered. then, when set, runs on
// the program goroutine with the result.
type dialogRequestMsg struct {
	dialog tui.Dialog
	reply  chan<- tui.DialogResult
	then   func(tui.DialogResult) tea.Cmd
}

// invitingMsg toggles the inviting indicator.
type invitingMsg struct{ inviting bool }

// membersChangedMsg and roomChangedMsg ask the model to re-read the
// member list and the room timeline.
type (
	membersChangedMsg struct{}
	roomChangedMsg    struct{}
)

// Bridge carries calls from background goroutines into the running
// program. It implements invite.Dialogs and supplies the member list
// OnChange and invite OnInviting callbacks.
//
// Confirm, ShowError and Inviting deliver synchronously so their
// order is kept; they must not be called from the program's Update.
// MembersChanged, RoomChanged and log records are delivered from a
// separate goroutine and are safe to call from anywhere. Messages
// sent before SetProgram are dropped.
type Bridge struct {
	theme tui.Theme

	mu      sync.RWMutex
	program sender
}

// NewBridge returns a bridge whose dialogs use theme.
func NewBridge(theme tui.Theme) *Bridge {
	return &Bridge{theme: theme}
}

// SetProgram attaches the program that receives messages.
func (bridge *Bridge) SetProgram(program *tea.Program) {
	if program == nil {
		bridge.setSender(nil)
		return
	}
	bridge.setSender(program)
}

func (bridge *Bridge) setSender(program sender) {
	bridge.mu.Lock()
	bridge.program = program
	bridge.mu.Unlock()
}

func (bridge *Bridge) send(message tea.Msg) bool {
	bridge.mu.RLock()
	program := bridge.program
	bridge.mu.RUnlock()
	if program == nil {
		return false
	}
	program.Send(message)
	return true
}

func (bridge *Bridge) sendAsync(message tea.Msg) {
	go bridge.send(message)
}

// Confirm shows a question dialog and waits for the answer.
func (bridge *Bridge) Confirm(ctx context.Context, title, description, button string) (bool, error) {
	reply := make(chan tui.DialogResult, 1)
	request := dialogRequestMsg{
		dialog: tui.NewQuestionDialog(title, description, button, bridge.theme),
		reply:  reply,
	}
	if !bridge.send(request) {
		return false, errNoProgram
	}
	select {
	case result := <-reply:
		return result.Confirmed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ShowError shows an error dialog without waiting for dismissal.
func (bridge *Bridge) ShowError(title, description string) {
	bridge.send(dialogRequestMsg{dialog: tui.NewErrorDialog(title, description, bridge.theme)})
}

// Inviting is the invite workflow's progress callback.
func (bridge *Bridge) Inviting(inviting bool) {
	bridge.send(invitingMsg{inviting: inviting})
}

// MembersChanged is the member list's change callback.
func (bridge *Bridge) MembersChanged() {
	bridge.sendAsync(membersChangedMsg{})
}

// RoomChanged tells the model the timeline or room name changed.
func (bridge *Bridge) RoomChanged() {
	bridge.sendAsync(roomChangedMsg{})
}
