// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bureau-foundation/roomview/lib/emoji"
	"github.com/bureau-foundation/roomview/lib/highlight"
	"github.com/bureau-foundation/roomview/lib/schema"
)

// Body classes.
const (
	ClassBody         = "body"
	ClassBigEmoji     = "big-emoji"
	ClassMarkdownBody = "markdown-body"
)

// BodyOptions configures BodyToHTML.
type BodyOptions struct {
	// Policy is the sanitizer allow-list. Nil uses DefaultPolicy().
	Policy *Policy

	// Emoji rewrites emoji into image tags.
	Emoji emoji.Transcoder

	// HighlightClass and HighlightLink are passed to highlight.HTML.
	HighlightClass string
	HighlightLink  string

	// DisableBigEmoji suppresses the big-emoji class.
	DisableBigEmoji bool
}

// Body is rendered message HTML with its container classes.
type Body struct {
	HTML     string
	Classes  []string
	IsHTML   bool
	BigEmoji bool
}

// ClassAttribute joins Classes for a class="" attribute.
func (body Body) ClassAttribute() string {
	return strings.Join(body.Classes, " ")
}

var stripPolicy = bluemonday.StrictPolicy()

// PlainTerms strips markup from search terms and returns them ordered
// for highlight.Apply.
func PlainTerms(terms []string) []string {
	plain := make([]string, 0, len(terms))
	for _, term := range terms {
		plain = append(plain, html.UnescapeString(stripPolicy.Sanitize(term)))
	}
	return highlight.SortTerms(plain)
}

// BodyToHTML renders message content as safe HTML with search terms
// highlighted.
func BodyToHTML(content schema.MessageContent, highlights []string, options BodyOptions) (Body, error) {
	terms := PlainTerms(highlights)
	highlightOptions := highlight.HTMLOptions{
		Class: options.HighlightClass,
		Link:  options.HighlightLink,
	}

	isHTML := content.Format == schema.FormatCustomHTML && content.FormattedBody != ""
	var safe string
	if isHTML {
		var filter TextFilter
		if len(terms) > 0 {
			filter = func(text string) string {
				return highlight.HTML(highlight.Apply(text, terms), highlightOptions)
			}
		}
		sanitized, err := Sanitize(content.FormattedBody, Options{
			Policy:     options.Policy,
			TextFilter: filter,
		})
		if err != nil {
			return Body{}, err
		}
		safe = HighlightCode(sanitized)
	} else {
		safe = highlight.HTML(highlight.Apply(content.Body, terms), highlightOptions)
	}

	body := Body{
		HTML:    options.Emoji.ToImage(safe),
		Classes: []string{ClassBody},
		IsHTML:  isHTML,
	}
	if !options.DisableBigEmoji && emoji.IsOnlyEmoji(content.Body) {
		body.BigEmoji = true
		body.Classes = append(body.Classes, ClassBigEmoji)
	}
	if isHTML {
		body.Classes = append(body.Classes, ClassMarkdownBody)
	}
	return body, nil
}

// EmojifyText escapes plain text and replaces emoji with image tags.
func EmojifyText(text string, transcoder emoji.Transcoder) string {
	return transcoder.ToImage(html.EscapeString(text))
}
