// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roomview/lib/testutil"
	"github.com/bureau-foundation/roomview/lib/tui"
)

// channelSender delivers program messages to a channel.
type channelSender chan tea.Msg

func (channel channelSender) Send(message tea.Msg) { channel <- message }

func newTestBridge() (*Bridge, channelSender) {
	bridge := NewBridge(tui.DefaultTheme)
	messages := make(channelSender, 16)
	bridge.setSender(messages)
	return bridge, messages
}

func TestBridgeConfirm(t *testing.T) {
	bridge, messages := newTestBridge()

	answer := make(chan bool, 1)
	go func() {
		confirmed, err := bridge.Confirm(context.Background(), "Warning", "Are you sure?", "Invite")
		if err != nil {
			t.Errorf("Confirm: %v", err)
		}
		answer <- confirmed
	}()

	message := testutil.RequireReceive(t, (<-chan tea.Msg)(messages), 5*time.Second, "waiting for dialog request")
	request, ok := message.(dialogRequestMsg)
	if !ok {
		t.Fatalf("got %T, want dialogRequestMsg", message)
	}
	if request.dialog.Kind != tui.DialogQuestion || request.dialog.Title != "Warning" || request.dialog.Button != "Invite" {
		t.Errorf("dialog = %+v", request.dialog)
	}
	request.reply <- tui.DialogResult{Confirmed: true}

	if !testutil.RequireReceive(t, answer, 5*time.Second, "waiting for Confirm") {
		t.Error("Confirm returned false after confirmation")
	}
}

func TestBridgeConfirmContextCancelled(t *testing.T) {
	bridge, messages := newTestBridge()
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() {
		_, err := bridge.Confirm(ctx, "Warning", "", "")
		result <- err
	}()
	testutil.RequireReceive(t, (<-chan tea.Msg)(messages), 5*time.Second, "waiting for dialog request")
	cancel()

	err := testutil.RequireReceive(t, result, 5*time.Second, "waiting for Confirm")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBridgeWithoutProgram(t *testing.T) {
	bridge := NewBridge(tui.DefaultTheme)
	if _, err := bridge.Confirm(context.Background(), "Warning", "", ""); !errors.Is(err, errNoProgram) {
		t.Errorf("err = %v, want errNoProgram", err)
	}
	// Dropped silently.
	bridge.ShowError("title", "description")
	bridge.Inviting(true)
	bridge.MembersChanged()
}

func TestBridgeMessages(t *testing.T) {
	bridge, messages := newTestBridge()
	receive := func() tea.Msg {
		return testutil.RequireReceive(t, (<-chan tea.Msg)(messages), 5*time.Second, "waiting for message")
	}

	bridge.ShowError("Failed to invite", "@bob:example.org: permission denied")
	request, ok := receive().(dialogRequestMsg)
	if !ok || request.dialog.Kind != tui.DialogError || request.reply != nil {
		t.Errorf("ShowError delivered %+v", request)
	}

	bridge.Inviting(true)
	if message, ok := receive().(invitingMsg); !ok || !message.inviting {
		t.Errorf("Inviting(true) delivered %+v", message)
	}

	bridge.MembersChanged()
	if _, ok := receive().(membersChangedMsg); !ok {
		t.Error("MembersChanged did not deliver membersChangedMsg")
	}

	bridge.RoomChanged()
	if _, ok := receive().(roomChangedMsg); !ok {
		t.Error("RoomChanged did not deliver roomChangedMsg")
	}
}

func TestLogHandler(t *testing.T) {
	bridge, messages := newTestBridge()
	logger := slog.New(NewLogHandler(bridge, slog.LevelWarn))

	logger.Info("not shown")
	logger.With("room_id", "!room:example.org").WithGroup("sync").Warn("sync failed", "attempt", 3)

	message := testutil.RequireReceive(t, (<-chan tea.Msg)(messages), 5*time.Second, "waiting for log record")
	record, ok := message.(logRecordMsg)
	if !ok {
		t.Fatalf("got %T, want logRecordMsg", message)
	}
	if record.Level != slog.LevelWarn {
		t.Errorf("level = %v, want WARN", record.Level)
	}
	want := "sync failed (room_id=!room:example.org, sync.attempt=3)"
	if record.Summary != want {
		t.Errorf("summary = %q, want %q", record.Summary, want)
	}
	testutil.RequireNoReceive(t, (<-chan tea.Msg)(messages), 50*time.Millisecond, "info record delivered")
}

func TestLogHandlerEnabled(t *testing.T) {
	handler := NewLogHandler(NewBridge(tui.DefaultTheme), slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled at warn level")
	}
	if !strings.Contains(formatAttr(slog.Int("n", 2)), "n=2") {
		t.Error("formatAttr lost the value")
	}
}
