// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/testutil"
	"github.com/bureau-foundation/roomview/messaging"
)

var testRoom = ref.MustParseRoomID("!room:example.org")

type fakeState struct{ visibility event.HistoryVisibility }

func (state fakeState) HistoryVisibility(ref.RoomID) event.HistoryVisibility {
	return state.visibility
}

type shownError struct{ title, description string }

// fakeDialogs answers Confirm from answers (blocking until one is
// sent) and records errors.
type fakeDialogs struct {
	answers  chan bool
	asked    chan struct{}
	mu       sync.Mutex
	confirms int
	errors   []shownError
}

func newFakeDialogs() *fakeDialogs {
	return &fakeDialogs{answers: make(chan bool, 4), asked: make(chan struct{}, 4)}
}

func (dialogs *fakeDialogs) Confirm(ctx context.Context, title, description, button string) (bool, error) {
	dialogs.mu.Lock()
	dialogs.confirms++
	dialogs.mu.Unlock()
	dialogs.asked <- struct{}{}
	select {
	case answer := <-dialogs.answers:
		return answer, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (dialogs *fakeDialogs) ShowError(title, description string) {
	dialogs.mu.Lock()
	defer dialogs.mu.Unlock()
	dialogs.errors = append(dialogs.errors, shownError{title, description})
}

func (dialogs *fakeDialogs) shown() []shownError {
	dialogs.mu.Lock()
	defer dialogs.mu.Unlock()
	return append([]shownError(nil), dialogs.errors...)
}

// fakeInviter fails addresses listed in failures and records the rest.
type fakeInviter struct {
	mu       sync.Mutex
	invited  []string
	failures map[string]error
}

func (inviter *fakeInviter) Invite(_ context.Context, _ ref.RoomID, address string) error {
	inviter.mu.Lock()
	defer inviter.mu.Unlock()
	if err, ok := inviter.failures[address]; ok {
		return err
	}
	inviter.invited = append(inviter.invited, address)
	return nil
}

func (inviter *fakeInviter) count() int {
	inviter.mu.Lock()
	defer inviter.mu.Unlock()
	return len(inviter.invited)
}

func newWorkflow(t *testing.T, config Config) *Workflow {
	t.Helper()
	if config.Session == nil {
		config.Session = &Session{}
	}
	workflow, err := NewWorkflow(config)
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	return workflow
}

func TestInviteSingle(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	var progress []bool
	workflow := newWorkflow(t, Config{
		Inviter:    inviter,
		State:      fakeState{visibility: event.HistoryVisibilityJoined},
		Dialogs:    dialogs,
		OnInviting: func(inviting bool) { progress = append(progress, inviting) },
	})

	results, err := workflow.Invite(context.Background(), testRoom, "  @bob:example.org  ")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Errorf("results = %+v", results)
	}
	if inviter.count() != 1 {
		t.Errorf("submitted %d invites, want 1", inviter.count())
	}
	if len(progress) != 2 || !progress[0] || progress[1] {
		t.Errorf("OnInviting calls = %v, want [true false]", progress)
	}
	if dialogs.confirms != 0 {
		t.Error("warning shown for a room without shared history")
	}
}

func TestInviteRefusals(t *testing.T) {
	tests := []struct {
		name      string
		guest     bool
		input     string
		category  Category
		wantTitle string
	}{
		{"guest", true, "@bob:example.org", CategoryGuest, "Unable to Invite"},
		{"malformed", false, "bob, not-an-address", CategoryValidation, "Invite Error"},
		{"empty", false, " ;, ", CategoryValidation, "Invite Error"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inviter := &fakeInviter{}
			dialogs := newFakeDialogs()
			workflow := newWorkflow(t, Config{Inviter: inviter, State: fakeState{}, Dialogs: dialogs, Guest: test.guest})

			_, err := workflow.Invite(context.Background(), testRoom, test.input)
			if !IsCategory(err, test.category) {
				t.Fatalf("err = %v, want category %s", err, test.category)
			}
			if inviter.count() != 0 {
				t.Error("invite submitted after refusal")
			}
			shown := dialogs.shown()
			if len(shown) != 1 || shown[0].title != test.wantTitle {
				t.Errorf("dialogs = %+v, want one titled %q", shown, test.wantTitle)
			}
		})
	}
}

func TestInviteServerErrors(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		category        Category
		wantTitle       string
		wantDescription string
	}{
		{
			name:            "forbidden",
			err:             &messaging.MatrixError{Code: messaging.ErrCodeForbidden, Message: "not allowed", StatusCode: 403},
			category:        CategoryForbidden,
			wantTitle:       "Unable to Invite",
			wantDescription: "You do not have permission to invite people to this room.",
		},
		{
			name:            "other server error",
			err:             &messaging.MatrixError{Code: messaging.ErrCodeUnknown, Message: "database is sad", StatusCode: 500},
			category:        CategoryServer,
			wantTitle:       "Server error whilst inviting",
			wantDescription: "database is sad",
		},
		{
			name:            "transport error",
			err:             errors.New("connection refused"),
			category:        CategoryServer,
			wantTitle:       "Server error whilst inviting",
			wantDescription: "connection refused",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inviter := &fakeInviter{failures: map[string]error{"@bob:example.org": test.err}}
			dialogs := newFakeDialogs()
			workflow := newWorkflow(t, Config{Inviter: inviter, State: fakeState{}, Dialogs: dialogs})

			results, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org")
			if !IsCategory(err, test.category) {
				t.Fatalf("err = %v, want category %s", err, test.category)
			}
			if !errors.Is(err, test.err) {
				t.Error("failure does not unwrap to the inviter error")
			}
			if len(results) != 1 || results[0].Err == nil {
				t.Errorf("results = %+v", results)
			}
			shown := dialogs.shown()
			if len(shown) != 1 || shown[0].title != test.wantTitle || shown[0].description != test.wantDescription {
				t.Errorf("dialogs = %+v", shown)
			}
		})
	}
}

func TestSharedHistoryWarningOncePerSession(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	session := &Session{}
	workflow := newWorkflow(t, Config{
		Inviter: inviter,
		State:   fakeState{visibility: event.HistoryVisibilityShared},
		Dialogs: dialogs,
		Session: session,
	})

	dialogs.answers <- true
	if _, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org"); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	if _, err := workflow.Invite(context.Background(), testRoom, "@carol:example.org"); err != nil {
		t.Fatalf("second invite: %v", err)
	}
	if dialogs.confirms != 1 {
		t.Errorf("warning shown %d times, want 1", dialogs.confirms)
	}
	if !session.WarningAccepted() {
		t.Error("session does not record acceptance")
	}
	if inviter.count() != 2 {
		t.Errorf("submitted %d invites, want 2", inviter.count())
	}
}

func TestSharedHistoryWarningDeclineResets(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	workflow := newWorkflow(t, Config{
		Inviter: inviter,
		State:   fakeState{visibility: event.HistoryVisibilityShared},
		Dialogs: dialogs,
	})

	dialogs.answers <- false
	_, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org")
	if !IsCategory(err, CategoryAborted) {
		t.Fatalf("declined invite err = %v, want aborted", err)
	}
	if inviter.count() != 0 {
		t.Error("invite submitted after declining")
	}

	dialogs.answers <- true
	if _, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org"); err != nil {
		t.Fatalf("invite after decline: %v", err)
	}
	if dialogs.confirms != 2 {
		t.Errorf("warning shown %d times, want 2 (asked again after decline)", dialogs.confirms)
	}
	if len(dialogs.shown()) != 0 {
		t.Errorf("declining showed an error dialog: %+v", dialogs.shown())
	}
}

func TestConcurrentInvitesShareWarning(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	workflow := newWorkflow(t, Config{
		Inviter: inviter,
		State:   fakeState{visibility: event.HistoryVisibilityShared},
		Dialogs: dialogs,
	})

	errs := make(chan error, 2)
	go func() {
		_, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org")
		errs <- err
	}()
	testutil.RequireReceive(t, dialogs.asked, 5*time.Second, "waiting for the warning dialog")
	go func() {
		_, err := workflow.Invite(context.Background(), testRoom, "@carol:example.org")
		errs <- err
	}()
	testutil.RequireNoReceive(t, dialogs.asked, 50*time.Millisecond, "second invite opened its own dialog")

	dialogs.answers <- false
	for range 2 {
		err := testutil.RequireReceive(t, errs, 5*time.Second, "waiting for invite result")
		if !IsCategory(err, CategoryAborted) {
			t.Errorf("err = %v, want aborted for every waiter", err)
		}
	}
	if inviter.count() != 0 {
		t.Error("invite submitted after declining")
	}
}

func TestBulkContinuesPastFailures(t *testing.T) {
	forbidden := &messaging.MatrixError{Code: messaging.ErrCodeForbidden, StatusCode: 403}
	inviter := &fakeInviter{failures: map[string]error{"@bad:example.org": forbidden}}
	dialogs := newFakeDialogs()
	workflow := newWorkflow(t, Config{
		Inviter: inviter,
		State:   fakeState{},
		Dialogs: dialogs,
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})

	results, err := workflow.Invite(context.Background(), testRoom,
		"@a:example.org, @bad:example.org; nonsense c@example.org")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}

	wantAddresses := []string{"@a:example.org", "@bad:example.org", "nonsense", "c@example.org"}
	if len(results) != len(wantAddresses) {
		t.Fatalf("got %d results, want %d", len(results), len(wantAddresses))
	}
	for index, want := range wantAddresses {
		if results[index].Address != want {
			t.Errorf("result %d address = %q, want %q", index, results[index].Address, want)
		}
	}
	if results[0].Err != nil || results[3].Err != nil {
		t.Errorf("valid addresses failed: %+v", results)
	}
	if !IsCategory(results[1].Err, CategoryForbidden) {
		t.Errorf("forbidden result = %v", results[1].Err)
	}
	if !IsCategory(results[2].Err, CategoryValidation) {
		t.Errorf("malformed result = %v", results[2].Err)
	}
	if inviter.count() != 2 {
		t.Errorf("submitted %d invites, want 2", inviter.count())
	}
	if shown := dialogs.shown(); len(shown) != 1 || shown[0].title != "Failed to invite" {
		t.Errorf("dialogs = %+v, want one summary", shown)
	}
}

func TestBulkRespectsCancelledContext(t *testing.T) {
	inviter := &fakeInviter{}
	workflow := newWorkflow(t, Config{
		Inviter: inviter,
		State:   fakeState{},
		Dialogs: newFakeDialogs(),
		Limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := workflow.Bulk(ctx, testRoom, []string{"@a:example.org", "@b:example.org"})
	for _, result := range results {
		if !IsCategory(result.Err, CategoryAborted) {
			t.Errorf("%s: err = %v, want aborted", result.Address, result.Err)
		}
	}
	if inviter.count() != 0 {
		t.Error("invites submitted with a cancelled context")
	}
}

func TestNewWorkflowValidation(t *testing.T) {
	if _, err := NewWorkflow(Config{}); err == nil {
		t.Error("NewWorkflow accepted an empty config")
	}
	if _, err := NewWorkflow(Config{Inviter: &fakeInviter{}, State: fakeState{}, Dialogs: newFakeDialogs()}); err == nil {
		t.Error("NewWorkflow accepted a config without session")
	}
}

type fixedPermission struct {
	allowed bool
	err     error
}

func (permission fixedPermission) CanInvite(context.Context, ref.RoomID) (bool, error) {
	return permission.allowed, permission.err
}

func TestInviteBelowInviteLevel(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	workflow := newWorkflow(t, Config{
		Inviter:    inviter,
		State:      fakeState{},
		Dialogs:    dialogs,
		Permission: fixedPermission{allowed: false},
	})

	_, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org")
	if !IsCategory(err, CategoryForbidden) {
		t.Fatalf("err = %v, want forbidden failure", err)
	}
	if inviter.count() != 0 {
		t.Error("invite submitted below the invite level")
	}
	shown := dialogs.shown()
	if len(shown) != 1 || shown[0].description != forbiddenDescription {
		t.Errorf("dialogs = %+v, want the forbidden dialog", shown)
	}
}

func TestInvitePermissionCheckFailureDefersToServer(t *testing.T) {
	inviter := &fakeInviter{}
	dialogs := newFakeDialogs()
	workflow := newWorkflow(t, Config{
		Inviter:    inviter,
		State:      fakeState{},
		Dialogs:    dialogs,
		Permission: fixedPermission{err: errors.New("connection refused")},
	})

	results, err := workflow.Invite(context.Background(), testRoom, "@bob:example.org")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if len(results) != 1 || results[0].Err != nil || inviter.count() != 1 {
		t.Errorf("results = %+v, invited = %d; want one successful submission", results, inviter.count())
	}
}
