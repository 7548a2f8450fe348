// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the room viewer. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorForeground  lipgloss.Color

	// Presence dots in the member list.
	PresenceActive  lipgloss.Color // Currently active.
	PresenceRecent  lipgloss.Color // Seen within RecentWindow.
	PresenceOffline lipgloss.Color

	// RecentWindow is how long after last activity a member still
	// counts as recently seen.
	RecentWindow time.Duration

	// Power level accents: administrators (100+) and moderators (50+).
	PowerAdmin     lipgloss.Color
	PowerModerator lipgloss.Color

	// Invited members and pending third-party invites.
	InvitedText lipgloss.Color

	// Search term highlighting in message bodies.
	SearchHighlightForeground lipgloss.Color
	SearchHighlightBackground lipgloss.Color

	LinkForeground lipgloss.Color

	// Modal dialogs.
	DialogForeground lipgloss.Color
	DialogBackground lipgloss.Color

	// CodeStyle names the chroma style used for code blocks.
	CodeStyle string
}

// PresenceColor returns the dot color for a member. lastActiveAgo is
// ignored when active is true; a negative value means unknown.
func (theme Theme) PresenceColor(active bool, lastActiveAgo time.Duration) lipgloss.Color {
	switch {
	case active:
		return theme.PresenceActive
	case lastActiveAgo >= 0 && lastActiveAgo < theme.RecentWindow:
		return theme.PresenceRecent
	default:
		return theme.PresenceOffline
	}
}

// PowerColor returns the name color for a power level. Ordinary
// members get NormalText.
func (theme Theme) PowerColor(level int) lipgloss.Color {
	switch {
	case level >= 100:
		return theme.PowerAdmin
	case level >= 50:
		return theme.PowerModerator
	default:
		return theme.NormalText
	}
}

// HighlightStyle is the lipgloss style applied to search matches.
func (theme Theme) HighlightStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.SearchHighlightForeground).
		Background(theme.SearchHighlightBackground)
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorForeground:  lipgloss.Color("196"),

	PresenceActive:  lipgloss.Color("114"), // green
	PresenceRecent:  lipgloss.Color("220"), // amber
	PresenceOffline: lipgloss.Color("240"), // dim gray
	RecentWindow:    10 * time.Minute,

	PowerAdmin:     lipgloss.Color("208"), // orange
	PowerModerator: lipgloss.Color("75"),  // blue

	InvitedText: lipgloss.Color("141"), // light purple

	SearchHighlightForeground: lipgloss.Color("230"),
	SearchHighlightBackground: lipgloss.Color("58"), // dark amber

	LinkForeground: lipgloss.Color("75"),

	DialogForeground: lipgloss.Color("252"),
	DialogBackground: lipgloss.Color("237"),

	CodeStyle: "monokai",
}
