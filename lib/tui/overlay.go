// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const sgrReset = "\x1b[0m"

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay lines anchored at (anchorX, anchorY). Truncation is
// ANSI-aware, so styling on either side of the overlay survives. View
// lines shorter than anchorX are padded with spaces.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}
	if anchorX < 0 {
		anchorX = 0
	}

	viewLines := strings.Split(view, "\n")
	for index, overlayLine := range overlayLines {
		row := anchorY + index
		if row < 0 || row >= len(viewLines) {
			continue
		}
		viewLines[row] = spliceLine(viewLines[row], overlayLine, anchorX)
	}
	return strings.Join(viewLines, "\n")
}

func spliceLine(line, overlay string, column int) string {
	lineWidth := ansi.StringWidth(line)

	var builder strings.Builder
	if column > 0 {
		if lineWidth < column {
			builder.WriteString(line)
			builder.WriteString(strings.Repeat(" ", column-lineWidth))
		} else {
			builder.WriteString(ansi.Truncate(line, column, ""))
		}
	}
	builder.WriteString(sgrReset)
	builder.WriteString(overlay)
	builder.WriteString(sgrReset)

	if end := column + ansi.StringWidth(overlay); end < lineWidth {
		builder.WriteString(ansi.TruncateLeft(line, end, ""))
	}
	return builder.String()
}

// CenterAnchor returns the top-left corner that centers a block of
// the given size on the screen, clamped to the screen origin.
func CenterAnchor(screenWidth, screenHeight, blockWidth, blockHeight int) (int, int) {
	return max((screenWidth-blockWidth)/2, 0), max((screenHeight-blockHeight)/2, 0)
}

// PadLine pads styled content to width with background-colored
// spaces. Content wider than width is truncated with an ellipsis.
func PadLine(styledContent string, width int, background lipgloss.Style) string {
	contentWidth := ansi.StringWidth(styledContent)
	if contentWidth > width {
		return ansi.Truncate(styledContent, width, "…")
	}
	return styledContent + background.Render(strings.Repeat(" ", width-contentWidth))
}
