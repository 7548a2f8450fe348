// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/clock"
	"github.com/bureau-foundation/roomview/lib/invite"
	"github.com/bureau-foundation/roomview/lib/memberlist"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/tui"
	"github.com/bureau-foundation/roomview/messaging"
)

var testRoomID = ref.MustParseRoomID("!room:example.org")

type fakeRoom struct {
	name   string
	events []messaging.Event
}

func (room *fakeRoom) Timeline(ref.RoomID) []messaging.Event { return room.events }
func (room *fakeRoom) RoomName(ref.RoomID) string            { return room.name }

type fakeMembers struct {
	view    memberlist.View
	queries []string
	showAll int
}

func (members *fakeMembers) View(query string) memberlist.View {
	members.queries = append(members.queries, query)
	return members.view
}

func (members *fakeMembers) ShowAll() { members.showAll++ }

func (members *fakeMembers) Member(userID ref.UserID) (*roster.Member, bool) {
	for _, member := range members.view.Joined {
		if member.UserID == userID {
			return member, true
		}
	}
	return nil, false
}

type fakeInvites struct {
	inputs  []string
	results []invite.Result
	err     error
}

func (invites *fakeInvites) Invite(_ context.Context, _ ref.RoomID, input string) ([]invite.Result, error) {
	invites.inputs = append(invites.inputs, input)
	return invites.results, invites.err
}

type fakeSender struct {
	sent []schema.MessageContent
	err  error
}

func (sender *fakeSender) SendMessage(_ context.Context, _ ref.RoomID, content schema.MessageContent) (string, error) {
	if sender.err != nil {
		return "", sender.err
	}
	sender.sent = append(sender.sent, content)
	return "$sent", nil
}

type modelFixture struct {
	room    *fakeRoom
	members *fakeMembers
	invites *fakeInvites
	sender  *fakeSender
}

func newTestModel(t *testing.T, onCancel func()) (Model, *modelFixture) {
	t.Helper()
	body, err := json.Marshal(schema.NewTextMessage("hello there", ""))
	if err != nil {
		t.Fatal(err)
	}
	fixture := &modelFixture{
		room: &fakeRoom{
			name: "Design review",
			events: []messaging.Event{{
				EventID:        "$1",
				Type:           schema.MatrixEventTypeMessage,
				Sender:         "@alice:example.org",
				OriginServerTS: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC).UnixMilli(),
				Content:        body,
			}},
		},
		members: &fakeMembers{view: testView()},
		invites: &fakeInvites{},
		sender:  &fakeSender{},
	}
	model := NewModel(Config{
		RoomID:   testRoomID,
		Room:     fixture.room,
		Members:  fixture.members,
		Invites:  fixture.invites,
		Sender:   fixture.sender,
		OnCancel: onCancel,
		Clock:    clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	})
	model = update(t, model, tea.WindowSizeMsg{Width: 90, Height: 20})
	return model, fixture
}

// update applies one message and drops the command.
func update(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, _ := model.Update(message)
	return updated.(Model)
}

func updateCmd(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, command := model.Update(message)
	return updated.(Model), command
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func isQuit(command tea.Cmd) bool {
	if command == nil {
		return false
	}
	_, ok := command().(tea.QuitMsg)
	return ok
}

func TestModelView(t *testing.T) {
	model, _ := newTestModel(t, nil)
	view := ansi.Strip(model.View())

	for _, want := range []string{"Design review", "Alice", "hello there", "Members", "Invited", "dave@example.org"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, cancelLabelForTest) {
		t.Error("cancel control shown without OnCancel")
	}
	lines := strings.Split(view, "\n")
	if len(lines) != 20 {
		t.Errorf("view has %d lines, want 20", len(lines))
	}
	for index, line := range lines {
		if width := ansi.StringWidth(line); width > 90 {
			t.Errorf("line %d has width %d, want at most 90", index, width)
		}
	}
}

const cancelLabelForTest = "Esc cancel"

func TestModelLoadingBeforeSize(t *testing.T) {
	model := NewModel(Config{
		RoomID:  testRoomID,
		Room:    &fakeRoom{},
		Members: &fakeMembers{},
		Invites: &fakeInvites{},
	})
	if model.View() != "Loading..." {
		t.Errorf("View() = %q before the first size message", model.View())
	}
}

func TestModelEscCancel(t *testing.T) {
	cancelled := 0
	model, _ := newTestModel(t, func() { cancelled++ })
	if !strings.Contains(ansi.Strip(model.View()), cancelLabelForTest) {
		t.Error("cancel control not shown")
	}

	_, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if cancelled != 1 {
		t.Errorf("OnCancel called %d times, want 1", cancelled)
	}
	if !isQuit(command) {
		t.Error("Esc with OnCancel did not quit")
	}
}

func TestModelEscWithoutCancel(t *testing.T) {
	model, _ := newTestModel(t, nil)
	_, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if isQuit(command) {
		t.Error("Esc quit without OnCancel")
	}
}

func TestModelSearch(t *testing.T) {
	cancelled := 0
	model, fixture := newTestModel(t, func() { cancelled++ })

	model = update(t, model, runes("/"))
	if model.Focused() != FocusSearch {
		t.Fatalf("focus = %d after /, want FocusSearch", model.Focused())
	}
	model = update(t, model, runes("bob"))
	if model.Query() != "bob" {
		t.Errorf("Query() = %q, want bob", model.Query())
	}
	if last := fixture.members.queries[len(fixture.members.queries)-1]; last != "bob" {
		t.Errorf("member list queried with %q, want bob", last)
	}

	// Enter keeps the query; the first Esc afterwards clears it
	// without closing the view.
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.Focused() != FocusTimeline || model.Query() != "bob" {
		t.Fatalf("after Enter: focus %d query %q", model.Focused(), model.Query())
	}
	model, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.Query() != "" {
		t.Errorf("Esc left query %q", model.Query())
	}
	if cancelled != 0 || isQuit(command) {
		t.Error("Esc clearing the query also closed the view")
	}
}

func TestModelInviteBox(t *testing.T) {
	model, fixture := newTestModel(t, nil)
	fixture.invites.results = []invite.Result{{Address: "@bob:example.org"}}

	model = update(t, model, runes("i"))
	if model.Focused() != FocusInvite {
		t.Fatalf("focus = %d after i, want FocusInvite", model.Focused())
	}
	model = update(t, model, runes("@bob:example.org"))
	model, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if command == nil {
		t.Fatal("Enter in the invite box returned no command")
	}

	done, ok := command().(inviteDoneMsg)
	if !ok {
		t.Fatal("invite command did not return inviteDoneMsg")
	}
	if len(fixture.invites.inputs) != 1 || fixture.invites.inputs[0] != "@bob:example.org" {
		t.Errorf("inviter got %v", fixture.invites.inputs)
	}

	model = update(t, model, done)
	if model.inviteInput.Value() != "" {
		t.Errorf("invite box kept %q after success", model.inviteInput.Value())
	}
	if !strings.Contains(ansi.Strip(model.View()), "Invited 1") {
		t.Error("status line does not report the invite")
	}
}

func TestModelInviteOutcomes(t *testing.T) {
	failed := invite.Result{Address: "@carol:example.org", Err: &invite.Failure{Category: invite.CategoryForbidden}}
	tests := []struct {
		name    string
		message inviteDoneMsg
		want    string
	}{
		{
			name:    "partial",
			message: inviteDoneMsg{input: "x", results: []invite.Result{{Address: "@bob:example.org"}, failed}},
			want:    "Invited 1 of 2",
		},
		{
			name:    "aborted",
			message: inviteDoneMsg{input: "x", err: &invite.Failure{Category: invite.CategoryAborted}},
			want:    "Invite cancelled",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			model, _ := newTestModel(t, nil)
			model = update(t, model, test.message)
			if !strings.Contains(ansi.Strip(model.View()), test.want) {
				t.Errorf("status line missing %q", test.want)
			}
		})
	}
}

func TestModelInvitingIndicator(t *testing.T) {
	model, _ := newTestModel(t, nil)
	model, command := updateCmd(t, model, invitingMsg{inviting: true})
	if command == nil {
		t.Error("inviting did not start the spinner")
	}
	if !strings.Contains(ansi.Strip(model.View()), "Inviting...") {
		t.Error("inviting indicator not shown")
	}
	model = update(t, model, invitingMsg{inviting: false})
	if strings.Contains(ansi.Strip(model.View()), "Inviting...") {
		t.Error("inviting indicator still shown")
	}
}

func TestModelDialogQueue(t *testing.T) {
	model, _ := newTestModel(t, nil)
	first := make(chan tui.DialogResult, 1)
	second := make(chan tui.DialogResult, 1)

	model = update(t, model, dialogRequestMsg{
		dialog: tui.NewQuestionDialog("First question", "", "Invite", tui.DefaultTheme),
		reply:  first,
	})
	model = update(t, model, dialogRequestMsg{
		dialog: tui.NewQuestionDialog("Second question", "", "Invite", tui.DefaultTheme),
		reply:  second,
	})
	if view := ansi.Strip(model.View()); !strings.Contains(view, "First question") || strings.Contains(view, "Second question") {
		t.Fatalf("expected only the first dialog:\n%s", view)
	}

	// The dialog takes keys ahead of the view: "i" does not focus
	// the invite box.
	model = update(t, model, runes("i"))
	if model.Focused() == FocusInvite {
		t.Error("key reached the view behind a dialog")
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	select {
	case result := <-first:
		if !result.Confirmed {
			t.Error("Enter did not confirm the first dialog")
		}
	default:
		t.Fatal("first dialog did not reply")
	}
	if !strings.Contains(ansi.Strip(model.View()), "Second question") {
		t.Error("second dialog not shown after the first closed")
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	select {
	case result := <-second:
		if result.Confirmed {
			t.Error("Esc confirmed the second dialog")
		}
	default:
		t.Fatal("second dialog did not reply")
	}
	if model.dialog != nil {
		t.Error("dialog still shown after both replied")
	}
}

func TestModelEmailDialog(t *testing.T) {
	model, fixture := newTestModel(t, nil)
	fixture.invites.results = []invite.Result{{Address: "dave@example.org"}}

	model, command := updateCmd(t, model, runes("e"))
	model = update(t, model, command())
	if model.dialog == nil || model.dialog.dialog.Kind != tui.DialogTextInput {
		t.Fatal("e did not open the email dialog")
	}
	model = update(t, model, runes("dave@example.org"))
	model, command = updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if command == nil {
		t.Fatal("confirming the dialog returned no command")
	}

	// The batch holds the dialog's own command and the invite.
	var done *inviteDoneMsg
	switch message := command().(type) {
	case tea.BatchMsg:
		for _, child := range message {
			if child == nil {
				continue
			}
			if result, ok := child().(inviteDoneMsg); ok {
				done = &result
			}
		}
	case inviteDoneMsg:
		done = &message
	}
	if done == nil {
		t.Fatal("no invite ran after the email dialog")
	}
	if done.input != "dave@example.org" {
		t.Errorf("invite input = %q", done.input)
	}
}

func TestModelShowAll(t *testing.T) {
	model, fixture := newTestModel(t, nil)
	model = update(t, model, runes("a"))
	if fixture.members.showAll != 1 {
		t.Errorf("ShowAll called %d times after a, want 1", fixture.members.showAll)
	}

	// Select on the overflow row has the same effect.
	model = update(t, model, tea.KeyMsg{Type: tea.KeyTab})
	if model.Focused() != FocusMembers {
		t.Fatalf("focus = %d after Tab, want FocusMembers", model.Focused())
	}
	for range 2 {
		model = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	}
	if model.memberRows[model.memberCursor].Kind != RowOverflow {
		t.Fatalf("cursor on row %d (%v), want the overflow row", model.memberCursor, model.memberRows[model.memberCursor].Kind)
	}
	update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if fixture.members.showAll != 2 {
		t.Errorf("ShowAll called %d times after selecting overflow, want 2", fixture.members.showAll)
	}
}

func TestModelMembersChanged(t *testing.T) {
	model, fixture := newTestModel(t, nil)
	fixture.members.view.Joined = append(fixture.members.view.Joined,
		testMember("@erin:example.org", "Erin", event.MembershipJoin, 50))
	model = update(t, model, membersChangedMsg{})
	if !strings.Contains(ansi.Strip(model.View()), "Erin") {
		t.Error("new member not shown after membersChangedMsg")
	}

	fixture.room.name = "Renamed"
	model = update(t, model, roomChangedMsg{})
	if !strings.Contains(ansi.Strip(model.View()), "Renamed") {
		t.Error("header not updated after roomChangedMsg")
	}
}

func TestModelStatusFades(t *testing.T) {
	model, _ := newTestModel(t, nil)
	model = update(t, model, logRecordMsg{Summary: "sync failed", Level: 8})
	if !strings.Contains(ansi.Strip(model.View()), "sync failed") {
		t.Fatal("log record not shown")
	}
	stale := statusFadeMsg{serial: model.statusSerial - 1}
	model = update(t, model, stale)
	if model.status == "" {
		t.Error("stale fade cleared the status")
	}
	model = update(t, model, statusFadeMsg{serial: model.statusSerial})
	if model.status != "" {
		t.Error("status not cleared by its fade")
	}
}

func TestModelComposeMarkdown(t *testing.T) {
	model, fixture := newTestModel(t, nil)

	model = update(t, model, runes("m"))
	if model.Focused() != FocusCompose {
		t.Fatalf("focus = %d after m, want FocusCompose", model.Focused())
	}
	model = update(t, model, runes("ship **it**"))
	model, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if command == nil {
		t.Fatal("Enter in the composer returned no command")
	}
	sent, ok := command().(messageSentMsg)
	if !ok || sent.err != nil {
		t.Fatalf("send command returned %#v", sent)
	}

	if len(fixture.sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fixture.sender.sent))
	}
	content := fixture.sender.sent[0]
	if content.Body != "ship **it**" {
		t.Errorf("Body = %q, want the raw text", content.Body)
	}
	if content.Format != schema.FormatCustomHTML || !strings.Contains(content.FormattedBody, "<strong>it</strong>") {
		t.Errorf("formatted body = %q (format %q), want rendered markdown", content.FormattedBody, content.Format)
	}

	model = update(t, model, sent)
	if model.composeInput.Value() != "" {
		t.Errorf("composer kept %q after sending", model.composeInput.Value())
	}
	if model.Focused() != FocusCompose {
		t.Error("composer lost focus after sending")
	}
}

func TestModelComposePlainText(t *testing.T) {
	content, err := ComposeMessage("just words")
	if err != nil {
		t.Fatalf("ComposeMessage: %v", err)
	}
	if content.Body != "just words" || content.FormattedBody != "" || content.Format != "" {
		t.Errorf("content = %+v, want a plain body only", content)
	}
}

func TestModelComposeFailure(t *testing.T) {
	model, fixture := newTestModel(t, nil)
	fixture.sender.err = &messaging.MatrixError{Code: messaging.ErrCodeForbidden, Message: "You are not allowed to send", StatusCode: 403}

	model = update(t, model, runes("m"))
	model = update(t, model, runes("hello"))
	model, command := updateCmd(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = update(t, model, command())

	if model.composeInput.Value() != "hello" {
		t.Errorf("composer = %q after a failed send, want the text kept", model.composeInput.Value())
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if view := ansi.Strip(model.View()); !strings.Contains(view, "Message not sent: You are not allowed to send") {
		t.Errorf("status line missing the send failure:\n%s", view)
	}
}

func TestModelComposeDisabledWithoutSender(t *testing.T) {
	model, _ := newTestModel(t, nil)
	model.config.Sender = nil

	model = update(t, model, runes("m"))
	if model.Focused() == FocusCompose {
		t.Error("composer opened without a sender")
	}
}
