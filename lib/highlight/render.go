// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package highlight

import (
	"html"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HTMLOptions controls HTML rendering.
type HTMLOptions struct {
	// Class is set on the span wrapping each match. Defaults to
	// "searchHighlight".
	Class string

	// Link, when set, wraps each highlighted span in an anchor to
	// this URL.
	Link string

	// Escape converts unmatched text and match text to HTML. Defaults
	// to html.EscapeString.
	Escape func(string) string
}

// DefaultClass is the span class used when HTMLOptions.Class is empty.
const DefaultClass = "searchHighlight"

// HTML renders fragments as HTML, wrapping matches in
// <span class="...">.
func HTML(fragments []Fragment, options HTMLOptions) string {
	class := options.Class
	if class == "" {
		class = DefaultClass
	}
	escape := options.Escape
	if escape == nil {
		escape = html.EscapeString
	}
	link := ""
	if options.Link != "" {
		link = html.EscapeString(encodeURI(options.Link))
	}

	var builder strings.Builder
	for _, fragment := range fragments {
		if !fragment.Matched {
			builder.WriteString(escape(fragment.Text))
			continue
		}
		if link != "" {
			builder.WriteString(`<a href="`)
			builder.WriteString(link)
			builder.WriteString(`">`)
		}
		builder.WriteString(`<span class="`)
		builder.WriteString(html.EscapeString(class))
		builder.WriteString(`">`)
		builder.WriteString(escape(fragment.Text))
		builder.WriteString(`</span>`)
		if link != "" {
			builder.WriteString(`</a>`)
		}
	}
	return builder.String()
}

// encodeURI percent-encodes characters that are not legal in a URL
// while leaving reserved delimiters and existing escapes intact.
func encodeURI(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return url.PathEscape(raw)
	}
	return parsed.String()
}

// Styled renders fragments for the terminal, applying matchStyle to
// matched text and leaving the rest untouched.
func Styled(fragments []Fragment, matchStyle lipgloss.Style) string {
	var builder strings.Builder
	for _, fragment := range fragments {
		if fragment.Matched {
			builder.WriteString(matchStyle.Render(fragment.Text))
		} else {
			builder.WriteString(fragment.Text)
		}
	}
	return builder.String()
}
