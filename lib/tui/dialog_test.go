// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func TestQuestionDialog(t *testing.T) {
	tests := []struct {
		name      string
		key       tea.KeyMsg
		confirmed bool
	}{
		{"enter confirms", tea.KeyMsg{Type: tea.KeyEnter}, true},
		{"y confirms", runes("y"), true},
		{"esc cancels", tea.KeyMsg{Type: tea.KeyEsc}, false},
		{"n cancels", runes("n"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dialog := NewQuestionDialog("Warning", "Continue?", "Invite", DefaultTheme)
			dialog.Update(test.key)
			if !dialog.Done() {
				t.Fatal("dialog not done after answer")
			}
			if dialog.Result().Confirmed != test.confirmed {
				t.Errorf("Confirmed = %v, want %v", dialog.Result().Confirmed, test.confirmed)
			}
		})
	}
}

func TestQuestionDialogIgnoresOtherRunes(t *testing.T) {
	dialog := NewQuestionDialog("Warning", "Continue?", "", DefaultTheme)
	dialog.Update(runes("x"))
	if dialog.Done() {
		t.Error("unrelated key finished the dialog")
	}
	if dialog.Button != "OK" {
		t.Errorf("default button = %q, want OK", dialog.Button)
	}
}

func TestErrorDialogDismissConfirms(t *testing.T) {
	dialog := NewErrorDialog("Unable to Invite", "denied", DefaultTheme)
	dialog.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !dialog.Done() || !dialog.Result().Confirmed {
		t.Errorf("error dialog result = %+v, want confirmed", dialog.Result())
	}
}

func TestTextInputDialog(t *testing.T) {
	dialog := NewTextInputDialog("Invite by Email", "Address", "user@example.org", "Invite", DefaultTheme)
	dialog.Update(runes("bob@example.org"))
	if dialog.Done() {
		t.Fatal("typing finished the dialog")
	}
	dialog.Update(tea.KeyMsg{Type: tea.KeyEnter})
	result := dialog.Result()
	if !result.Confirmed || result.Value != "bob@example.org" {
		t.Errorf("result = %+v, want confirmed with typed value", result)
	}

	dialog.Update(runes("more"))
	if dialog.Result().Value != "bob@example.org" {
		t.Error("input accepted after the dialog finished")
	}
}

func TestTextInputDialogCancelDropsValue(t *testing.T) {
	dialog := NewTextInputDialog("Invite", "", "", "", DefaultTheme)
	dialog.Update(runes("typed"))
	dialog.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if result := dialog.Result(); result.Confirmed || result.Value != "" {
		t.Errorf("result = %+v, want unconfirmed and empty", result)
	}
}

func TestDialogRender(t *testing.T) {
	dialog := NewErrorDialog("Unable to Invite", "You do not have permission to invite people to this room.", DefaultTheme)
	lines, anchorX, anchorY := dialog.Render(100, 30)
	if len(lines) < 4 {
		t.Fatalf("rendered %d lines, want at least 4", len(lines))
	}
	plain := ansi.Strip(strings.Join(lines, "\n"))
	if !strings.Contains(plain, "Unable to Invite") {
		t.Errorf("rendered dialog missing title:\n%s", plain)
	}
	width := ansi.StringWidth(lines[0])
	if width > dialogWidth {
		t.Errorf("dialog width %d exceeds %d", width, dialogWidth)
	}
	if anchorX != (100-width)/2 || anchorY != (30-len(lines))/2 {
		t.Errorf("anchor = (%d, %d), not centered", anchorX, anchorY)
	}
}
