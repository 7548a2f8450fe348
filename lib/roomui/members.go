// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"maunium.net/go/mautrix/event"

	"github.com/bureau-foundation/roomview/lib/memberlist"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/tui"
)

// RowKind identifies what a member pane row shows.
type RowKind int

const (
	RowHeading RowKind = iota
	RowMember
	RowOverflow
	RowThirdParty
	RowBlank
)

// MemberRow is one line of the member pane.
type MemberRow struct {
	Kind   RowKind
	UserID ref.UserID
	Label  string
	Member *roster.Member
	Invite roster.ThirdPartyInvite
}

// Selectable reports whether the cursor may rest on the row.
func (row MemberRow) Selectable() bool {
	return row.Kind == RowMember || row.Kind == RowOverflow || row.Kind == RowThirdParty
}

// MemberRows lays out a member list view: the joined section, the
// overflow row when members are hidden, then the invited section with
// pending third-party invites last.
func MemberRows(view memberlist.View) []MemberRow {
	var rows []MemberRow
	rows = append(rows, MemberRow{Kind: RowHeading, Label: "Members"})
	for _, member := range view.Joined {
		rows = append(rows, MemberRow{Kind: RowMember, UserID: member.UserID, Label: member.Name, Member: member})
	}
	if view.Overflow != "" {
		rows = append(rows, MemberRow{Kind: RowOverflow, Label: view.Overflow})
	}

	if len(view.Invited) == 0 && len(view.ThirdParty) == 0 {
		return rows
	}
	rows = append(rows, MemberRow{Kind: RowBlank}, MemberRow{Kind: RowHeading, Label: "Invited"})
	for _, member := range view.Invited {
		rows = append(rows, MemberRow{Kind: RowMember, UserID: member.UserID, Label: member.Name, Member: member})
	}
	for _, pending := range view.ThirdParty {
		rows = append(rows, MemberRow{Kind: RowThirdParty, Label: pending.DisplayName, Invite: pending})
	}
	return rows
}

// presenceAge is how long ago the user was last active, or -1 when
// unknown.
func presenceAge(user *roster.User, now time.Time) time.Duration {
	lastActive := user.LastActiveTS()
	if lastActive.IsZero() {
		return -1
	}
	return max(now.Sub(lastActive), 0)
}

// renderRow draws one row width columns wide.
func renderRow(row MemberRow, theme tui.Theme, width int, selected bool, now time.Time) string {
	var content string
	switch row.Kind {
	case RowBlank:
		content = ""
	case RowHeading:
		content = lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(row.Label)
	case RowOverflow:
		content = lipgloss.NewStyle().Italic(true).Foreground(theme.FaintText).Render(row.Label)
	case RowThirdParty:
		content = lipgloss.NewStyle().Foreground(theme.FaintText).Render("✉ ") +
			lipgloss.NewStyle().Foreground(theme.InvitedText).Render(ansi.Truncate(row.Label, width-2, "…"))
	case RowMember:
		member := row.Member
		active := member.User != nil && member.User.CurrentlyActive
		age := time.Duration(-1)
		if member.User != nil {
			age = presenceAge(member.User, now)
		}
		dot := lipgloss.NewStyle().Foreground(theme.PresenceColor(active, age)).Render("●")

		nameColor := theme.PowerColor(member.PowerLevel)
		if member.Membership == event.MembershipInvite {
			nameColor = theme.InvitedText
		}
		name := lipgloss.NewStyle().Foreground(nameColor).Render(ansi.Truncate(row.Label, width-2, "…"))
		content = dot + " " + name
	}

	background := lipgloss.NewStyle()
	if selected {
		background = background.Background(theme.SelectedBackground)
		content = lipgloss.NewStyle().Background(theme.SelectedBackground).Render(ansi.Strip(content))
	}
	return tui.PadLine(content, width, background)
}

// renderMemberPane draws rows from offset into a height-line block
// with a scrollbar in the last column.
func renderMemberPane(rows []MemberRow, theme tui.Theme, width, height, offset, cursor int, focused bool, now time.Time) string {
	if width < 3 || height <= 0 {
		return ""
	}
	rowWidth := width - 1
	lines := make([]string, height)
	for line := range lines {
		index := offset + line
		if index >= len(rows) {
			lines[line] = strings.Repeat(" ", rowWidth)
			continue
		}
		lines[line] = renderRow(rows[index], theme, rowWidth, focused && index == cursor, now)
	}
	scrollbar := strings.Split(tui.Scrollbar(theme, height, len(rows), height, offset, focused), "\n")
	for line := range lines {
		if line < len(scrollbar) {
			lines[line] += scrollbar[line]
		}
	}
	return strings.Join(lines, "\n")
}

// nextSelectable returns the index of the next selectable row after
// from in direction step (+1 or -1), or from when there is none.
func nextSelectable(rows []MemberRow, from, step int) int {
	for index := from + step; index >= 0 && index < len(rows); index += step {
		if rows[index].Selectable() {
			return index
		}
	}
	return from
}

// firstSelectable returns the first selectable row, or -1.
func firstSelectable(rows []MemberRow) int {
	for index, row := range rows {
		if row.Selectable() {
			return index
		}
	}
	return -1
}
