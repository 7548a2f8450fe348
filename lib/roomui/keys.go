// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the room view.
type KeyMap struct {
	// Navigation in the focused pane.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	FocusToggle key.Binding // Timeline / member list.
	Select      key.Binding // Member list: show all, or member details.

	Search      key.Binding
	Compose     key.Binding // Focus the message composer.
	Invite      key.Binding // Focus the invite box.
	InviteEmail key.Binding // Open the email invite dialog.
	ShowAll     key.Binding

	Cancel key.Binding // Clear search, leave an input, or close the view.
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch pane"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Compose: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "message"),
	),
	Invite: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "invite"),
	),
	InviteEmail: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "invite by email"),
	),
	ShowAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "show all"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// shortHelp is the key help shown in the status line.
func (keys KeyMap) shortHelp() []key.Binding {
	return []key.Binding{keys.FocusToggle, keys.Search, keys.Compose, keys.Invite, keys.InviteEmail, keys.ShowAll, keys.Quit}
}
