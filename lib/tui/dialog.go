// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DialogKind selects the controls a Dialog shows.
type DialogKind int

const (
	// DialogQuestion asks the user to confirm or cancel.
	DialogQuestion DialogKind = iota
	// DialogError reports a failure; any dismissal confirms.
	DialogError
	// DialogTextInput collects one line of text.
	DialogTextInput
)

// DialogResult is the user's answer. Value is only set for text input
// dialogs.
type DialogResult struct {
	Confirmed bool
	Value     string
}

// Dialog is a centered modal rendered over the main view. The owning
// model forwards key messages to Update until it reports done, then
// reads Result.
type Dialog struct {
	Kind        DialogKind
	Title       string
	Description string
	Button      string

	input  textinput.Model
	theme  Theme
	result DialogResult
	done   bool
}

const (
	dialogWidth       = 56
	dialogChromeWidth = 4 // border plus horizontal padding
)

// NewQuestionDialog creates a confirm/cancel dialog. An empty button
// label defaults to "OK".
func NewQuestionDialog(title, description, button string, theme Theme) Dialog {
	if button == "" {
		button = "OK"
	}
	return Dialog{Kind: DialogQuestion, Title: title, Description: description, Button: button, theme: theme}
}

// NewErrorDialog creates a dismiss-only dialog.
func NewErrorDialog(title, description string, theme Theme) Dialog {
	return Dialog{Kind: DialogError, Title: title, Description: description, Button: "OK", theme: theme}
}

// NewTextInputDialog creates a dialog with a focused single-line input.
func NewTextInputDialog(title, description, placeholder, button string, theme Theme) Dialog {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "> "
	input.Width = dialogWidth - dialogChromeWidth - 3
	input.Focus()
	if button == "" {
		button = "OK"
	}
	return Dialog{
		Kind:        DialogTextInput,
		Title:       title,
		Description: description,
		Button:      button,
		input:       input,
		theme:       theme,
	}
}

// Done reports whether the user has answered.
func (dialog Dialog) Done() bool {
	return dialog.done
}

// Result returns the answer once Done is true.
func (dialog Dialog) Result() DialogResult {
	return dialog.result
}

// Update processes a message. It returns a command from the embedded
// text input, if any.
func (dialog *Dialog) Update(message tea.Msg) tea.Cmd {
	if dialog.done {
		return nil
	}
	keyMessage, isKey := message.(tea.KeyMsg)
	if isKey {
		switch keyMessage.Type {
		case tea.KeyEnter:
			dialog.finish(true)
			return nil
		case tea.KeyEsc, tea.KeyCtrlC:
			dialog.finish(dialog.Kind == DialogError)
			return nil
		}
		if dialog.Kind == DialogQuestion && keyMessage.Type == tea.KeyRunes {
			switch strings.ToLower(string(keyMessage.Runes)) {
			case "y":
				dialog.finish(true)
			case "n":
				dialog.finish(false)
			}
			return nil
		}
	}
	if dialog.Kind != DialogTextInput {
		return nil
	}
	var command tea.Cmd
	dialog.input, command = dialog.input.Update(message)
	return command
}

func (dialog *Dialog) finish(confirmed bool) {
	dialog.done = true
	dialog.result = DialogResult{Confirmed: confirmed}
	if confirmed && dialog.Kind == DialogTextInput {
		dialog.result.Value = dialog.input.Value()
	}
}

// Render produces the overlay lines and the anchor that centers them
// on a screen of the given size.
func (dialog Dialog) Render(screenWidth, screenHeight int) ([]string, int, int) {
	width := min(dialogWidth, screenWidth)
	innerWidth := max(width-dialogChromeWidth, 10)

	background := lipgloss.NewStyle().Background(dialog.theme.DialogBackground)
	titleColor := dialog.theme.HeaderForeground
	if dialog.Kind == DialogError {
		titleColor = dialog.theme.ErrorForeground
	}
	titleStyle := background.Bold(true).Foreground(titleColor)
	textStyle := background.Foreground(dialog.theme.DialogForeground)
	hintStyle := background.Foreground(dialog.theme.FaintText)

	var lines []string
	lines = append(lines, PadLine(titleStyle.Render(dialog.Title), innerWidth, background))
	lines = append(lines, PadLine("", innerWidth, background))
	for _, paragraph := range strings.Split(dialog.Description, "\n") {
		wrapped := ansi.Wordwrap(paragraph, innerWidth, "")
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, PadLine(textStyle.Render(line), innerWidth, background))
		}
	}
	if dialog.Kind == DialogTextInput {
		lines = append(lines, PadLine("", innerWidth, background))
		lines = append(lines, PadLine(dialog.input.View(), innerWidth, background))
	}
	lines = append(lines, PadLine("", innerWidth, background))
	lines = append(lines, PadLine(hintStyle.Render(dialog.hint()), innerWidth, background))

	rendered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dialog.theme.BorderColor).
		Background(dialog.theme.DialogBackground).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	overlay := strings.Split(rendered, "\n")
	anchorX, anchorY := CenterAnchor(screenWidth, screenHeight, ansi.StringWidth(overlay[0]), len(overlay))
	return overlay, anchorX, anchorY
}

func (dialog Dialog) hint() string {
	switch dialog.Kind {
	case DialogError:
		return "Enter " + dialog.Button
	case DialogQuestion:
		return "Enter/y " + dialog.Button + "  Esc/n Cancel"
	default:
		return "Enter " + dialog.Button + "  Esc Cancel"
	}
}
