// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Table, extension.TaskList),
		)
	})
	return markdownInstance
}

// FormatMarkdown renders an outgoing plain-text body as HTML. ok is
// false when the body has no markdown beyond plain paragraphs of text,
// in which case the message should be sent without formatted_body.
func FormatMarkdown(body string) (formatted string, ok bool, err error) {
	source := []byte(body)
	markdown := getMarkdown()
	document := markdown.Parser().Parse(text.NewReader(source))
	if isPlainDocument(document) {
		return "", false, nil
	}

	var buffer bytes.Buffer
	if err := markdown.Renderer().Render(&buffer, source, document); err != nil {
		return "", false, fmt.Errorf("htmlbody: rendering markdown: %w", err)
	}
	return strings.TrimSpace(buffer.String()), true, nil
}

// isPlainDocument reports whether document holds only paragraphs of
// unformatted text.
func isPlainDocument(document ast.Node) bool {
	for block := document.FirstChild(); block != nil; block = block.NextSibling() {
		if block.Kind() != ast.KindParagraph {
			return false
		}
		for child := block.FirstChild(); child != nil; child = child.NextSibling() {
			textNode, isText := child.(*ast.Text)
			if !isText || textNode.HardLineBreak() {
				return false
			}
		}
	}
	return true
}
