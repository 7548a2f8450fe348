// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TextFilter converts one decoded text node into safe HTML. The
// result is written verbatim, so the filter must escape.
type TextFilter func(text string) string

// Options configures one Sanitize call.
type Options struct {
	// Policy is the allow-list. Nil uses DefaultPolicy().
	Policy *Policy

	// TextFilter, when set, replaces escaping of text nodes. It is
	// scoped to this call.
	TextFilter TextFilter
}

// discardContentTags lose their text as well as their markup.
var discardContentTags = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"option":   true,
	"noscript": true,
	"title":    true,
}

// Sanitize rewrites raw HTML to the policy's allow-list. A panic in
// the text filter is recovered and returned as an error.
func Sanitize(raw string, options Options) (result string, err error) {
	policy := options.Policy
	if policy == nil {
		policy = DefaultPolicy()
	}
	filter := options.TextFilter
	if filter == nil {
		filter = html.EscapeString
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			result = ""
			err = fmt.Errorf("htmlbody: text filter panicked: %v", recovered)
		}
	}()

	var builder strings.Builder
	builder.Grow(len(raw))
	var open []string
	discardDepth := 0

	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			if tokenErr := tokenizer.Err(); !errors.Is(tokenErr, io.EOF) {
				return "", fmt.Errorf("htmlbody: tokenizing: %w", tokenErr)
			}
			for index := len(open) - 1; index >= 0; index-- {
				writeEndTag(&builder, open[index])
			}
			return builder.String(), nil

		case html.TextToken:
			if discardDepth > 0 {
				continue
			}
			builder.WriteString(filter(string(tokenizer.Text())))

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if discardContentTags[token.Data] {
				if tokenType == html.StartTagToken {
					discardDepth++
				}
				continue
			}
			if discardDepth > 0 || !policy.AllowedTags[token.Data] {
				continue
			}
			attributes := policy.filterAttributes(token)
			selfClosing := policy.SelfClosing[token.Data]
			writeStartTag(&builder, token.Data, attributes, selfClosing)
			if !selfClosing && tokenType == html.StartTagToken {
				open = append(open, token.Data)
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if discardContentTags[tag] {
				if discardDepth > 0 {
					discardDepth--
				}
				continue
			}
			if discardDepth > 0 {
				continue
			}
			for index := len(open) - 1; index >= 0; index-- {
				if open[index] != tag {
					continue
				}
				for closing := len(open) - 1; closing >= index; closing-- {
					writeEndTag(&builder, open[closing])
				}
				open = open[:index]
				break
			}

		case html.CommentToken, html.DoctypeToken:
		}
	}
}

// filterAttributes applies the per-tag attribute allow-list, the URL
// scheme check, class prefixes, and the anchor target rule.
func (policy *Policy) filterAttributes(token html.Token) []html.Attribute {
	var kept []html.Attribute
	href := ""
	for _, attribute := range token.Attr {
		if attribute.Namespace != "" || !policy.attributeAllowed(token.Data, attribute.Key) {
			continue
		}
		switch attribute.Key {
		case "href", "src":
			if !policy.schemeAllowed(token.Data, attribute.Val) {
				continue
			}
			if attribute.Key == "href" {
				href = attribute.Val
			}
		case "class":
			attribute.Val = policy.filterClasses(token.Data, attribute.Val)
			if attribute.Val == "" {
				continue
			}
		case "target":
			// Rewritten below for anchors.
			if token.Data == "a" {
				continue
			}
		}
		kept = append(kept, attribute)
	}

	if token.Data == "a" {
		internal := href != "" && policy.InternalLink != nil && policy.InternalLink.MatchString(href)
		if !internal {
			kept = append(kept, html.Attribute{Key: "target", Val: "_blank"})
		}
	}
	return kept
}

func writeStartTag(builder *strings.Builder, tag string, attributes []html.Attribute, selfClosing bool) {
	builder.WriteByte('<')
	builder.WriteString(tag)
	for _, attribute := range attributes {
		builder.WriteByte(' ')
		builder.WriteString(attribute.Key)
		builder.WriteString(`="`)
		builder.WriteString(html.EscapeString(attribute.Val))
		builder.WriteByte('"')
	}
	if selfClosing {
		builder.WriteString(" />")
		return
	}
	builder.WriteByte('>')
}

func writeEndTag(builder *strings.Builder, tag string) {
	builder.WriteString("</")
	builder.WriteString(tag)
	builder.WriteByte('>')
}
