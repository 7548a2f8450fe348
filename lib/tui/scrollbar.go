// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scrollbar produces a one-column scrollbar height rows tall for a
// list of total rows of which visible are on screen starting at
// offset. When everything fits the thumb fills the track.
func Scrollbar(theme Theme, height, total, visible, offset int, focused bool) string {
	if height <= 0 {
		return ""
	}

	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.HeaderForeground
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := lipgloss.NewStyle().Foreground(thumbColor).Render("┃")

	thumbStart, thumbSize := 0, height
	if total > visible && total > 0 {
		thumbSize = max(height*visible/total, 1)
		if scrollable, travel := total-visible, height-thumbSize; travel > 0 {
			thumbStart = min(offset*travel/scrollable, travel)
		}
	}

	rows := make([]string, height)
	for row := range rows {
		if row >= thumbStart && row < thumbStart+thumbSize {
			rows[row] = thumb
		} else {
			rows[row] = track
		}
	}
	return strings.Join(rows, "\n")
}
