// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
)

var codeFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.PreventSurroundingPre(true),
)

type codeBlock struct {
	raw       strings.Builder
	text      strings.Builder
	language  string
	hasMarkup bool
}

// HighlightCode colours <pre><code> blocks of already-sanitized HTML
// with chroma token classes. The language comes from a
// "language-<name>" class, falling back to content analysis. Blocks
// that contain markup (search highlights, links) are left unchanged.
func HighlightCode(safe string) string {
	if !strings.Contains(safe, "<pre") {
		return safe
	}

	var builder strings.Builder
	builder.Grow(len(safe))
	var block *codeBlock
	afterPre := false

	tokenizer := html.NewTokenizer(strings.NewReader(safe))
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			if block != nil {
				builder.WriteString(block.raw.String())
			}
			return builder.String()
		}
		raw := string(tokenizer.Raw())

		if block != nil {
			if tokenType == html.EndTagToken {
				if name, _ := tokenizer.TagName(); string(name) == "code" {
					builder.WriteString(block.render(raw))
					block = nil
					continue
				}
			}
			block.raw.WriteString(raw)
			if tokenType == html.TextToken {
				block.text.Write(tokenizer.Text())
			} else {
				block.hasMarkup = true
			}
			continue
		}

		if tokenType == html.StartTagToken {
			name, hasAttributes := tokenizer.TagName()
			switch string(name) {
			case "pre":
				afterPre = true
				builder.WriteString(raw)
				continue
			case "code":
				if afterPre {
					block = &codeBlock{}
					block.raw.WriteString(raw)
					for hasAttributes {
						var key, value []byte
						key, value, hasAttributes = tokenizer.TagAttr()
						if string(key) == "class" {
							block.language = languageFromClass(string(value))
						}
					}
					afterPre = false
					continue
				}
			}
		}
		afterPre = false
		builder.WriteString(raw)
	}
}

func languageFromClass(class string) string {
	for _, name := range strings.Fields(class) {
		if language, ok := strings.CutPrefix(name, "language-"); ok {
			return language
		}
	}
	return ""
}

// render returns the highlighted block, or the original markup when
// the block cannot be highlighted. closing is the raw </code> token.
func (block *codeBlock) render(closing string) string {
	original := block.raw.String() + closing
	if block.hasMarkup {
		return original
	}
	code := block.text.String()

	var lexer chroma.Lexer
	if block.language != "" {
		lexer = lexers.Get(block.language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return original
	}

	var formatted strings.Builder
	if err := codeFormatter.Format(&formatted, styles.Fallback, iterator); err != nil {
		return original
	}

	class := "chroma"
	if block.language != "" {
		class = "language-" + html.EscapeString(block.language) + " chroma"
	}
	return `<code class="` + class + `">` + formatted.String() + closing
}
