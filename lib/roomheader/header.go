// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomheader renders the one-line room header: a title and,
// when the surrounding view can be dismissed, a cancel control.
package roomheader

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/roomview/lib/tui"
)

// Lines is the height of the rendered header: the title row and a
// separator.
const Lines = 2

const cancelLabel = "Esc cancel"

// Header is a room title with an optional cancel control. OnCancel
// nil means the control is not shown and esc is ignored.
type Header struct {
	Title    string
	OnCancel func()
	Theme    tui.Theme
}

// New returns a header for title. onCancel may be nil.
func New(title string, onCancel func(), theme tui.Theme) Header {
	return Header{Title: title, OnCancel: onCancel, Theme: theme}
}

// Update calls OnCancel when esc is pressed. Returns whether the key
// was consumed.
func (header Header) Update(message tea.Msg) bool {
	keyMessage, ok := message.(tea.KeyMsg)
	if !ok || header.OnCancel == nil {
		return false
	}
	if keyMessage.Type != tea.KeyEsc {
		return false
	}
	header.OnCancel()
	return true
}

// View renders the header at width columns. The title is truncated
// with an ellipsis to leave room for the cancel control.
func (header Header) View(width int) string {
	if width <= 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(header.Theme.HeaderForeground)

	right := ""
	if header.OnCancel != nil {
		right = lipgloss.NewStyle().Foreground(header.Theme.HelpText).Render(cancelLabel)
	}
	rightWidth := lipgloss.Width(right)

	titleWidth := width - rightWidth
	if rightWidth > 0 {
		titleWidth--
	}
	title := ""
	if titleWidth > 0 {
		title = titleStyle.Render(ansi.Truncate(header.Title, titleWidth, "…"))
	}

	gap := max(width-lipgloss.Width(title)-rightWidth, 0)
	line := title + strings.Repeat(" ", gap) + right
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "")
	}

	separator := lipgloss.NewStyle().
		Foreground(header.Theme.BorderColor).
		Render(strings.Repeat("─", width))
	return line + "\n" + separator
}
