// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/tui"
)

func renderPlain(t *testing.T, content schema.MessageContent, terms []string, width int) (styled, plain string) {
	t.Helper()
	renderer := BodyRenderer{Theme: tui.DefaultTheme}
	styled, err := renderer.Render(content, terms, width)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return styled, ansi.Strip(styled)
}

func htmlMessage(formatted string) schema.MessageContent {
	return schema.NewTextMessage("message", formatted)
}

func TestRenderLayout(t *testing.T) {
	tests := []struct {
		name    string
		content schema.MessageContent
		want    string
	}{
		{
			name:    "plain body keeps newlines",
			content: schema.NewTextMessage("first line\nsecond line", ""),
			want:    "first line\nsecond line",
		},
		{
			name:    "paragraph and bold",
			content: htmlMessage("<p>Hello <b>world</b></p><p>again</p>"),
			want:    "Hello world\nagain",
		},
		{
			name:    "whitespace collapses in HTML",
			content: htmlMessage("<p>a\n   b</p>"),
			want:    "a b",
		},
		{
			name:    "unordered list",
			content: htmlMessage("<ul><li>one</li><li>two</li></ul>"),
			want:    "• one\n• two",
		},
		{
			name:    "ordered list",
			content: htmlMessage("<ol><li>first</li><li>second</li></ol>"),
			want:    "1. first\n2. second",
		},
		{
			name:    "blockquote",
			content: htmlMessage("<blockquote>quoted</blockquote>after"),
			want:    "│ quoted\nafter",
		},
		{
			name:    "link shows its target",
			content: htmlMessage(`<a href="https://example.org/page">the page</a>`),
			want:    "the page <https://example.org/page>",
		},
		{
			name:    "bare link is not repeated",
			content: htmlMessage(`<a href="https://example.org">https://example.org</a>`),
			want:    "https://example.org",
		},
		{
			name:    "script content dropped",
			content: htmlMessage("<p>ok</p><script>alert(1)</script>"),
			want:    "ok",
		},
		{
			name:    "line break",
			content: htmlMessage("one<br>two"),
			want:    "one\ntwo",
		},
		{
			name:    "emoji stays an emoji",
			content: schema.NewTextMessage("hi 😄", ""),
			want:    "hi 😄",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, plain := renderPlain(t, test.content, nil, 80)
			if plain != test.want {
				t.Errorf("rendered %q, want %q", plain, test.want)
			}
		})
	}
}

func TestRenderHighlightsTerms(t *testing.T) {
	content := schema.NewTextMessage("the quick brown fox", "")
	unstyled, _ := renderPlain(t, content, nil, 80)
	styled, plain := renderPlain(t, content, []string{"QUICK"}, 80)

	if plain != "the quick brown fox" {
		t.Errorf("highlighting changed the text: %q", plain)
	}
	if styled == unstyled {
		t.Error("highlighted output has no styling for the match")
	}
}

func TestRenderHighlightsInsideHTML(t *testing.T) {
	content := htmlMessage("<p>deploy <b>tonight</b></p>")
	unstyled, _ := renderPlain(t, content, nil, 80)
	styled, plain := renderPlain(t, content, []string{"night"}, 80)
	if plain != "deploy tonight" {
		t.Errorf("rendered %q", plain)
	}
	if styled == unstyled {
		t.Error("match inside bold text not styled")
	}
}

func TestRenderCodeBlock(t *testing.T) {
	content := htmlMessage("<pre><code class=\"language-go\">func main() {\n\treturn\n}\n</code></pre><p>done</p>")
	styled, plain := renderPlain(t, content, nil, 80)

	if !strings.Contains(plain, "func main() {") || !strings.Contains(plain, "return") {
		t.Errorf("code text lost: %q", plain)
	}
	if !strings.HasSuffix(plain, "\ndone") {
		t.Errorf("paragraph after code block not on its own line: %q", plain)
	}
	if styled == plain {
		t.Error("code block not coloured")
	}
}

func TestRenderCodeBlockWithMatch(t *testing.T) {
	content := htmlMessage("<pre><code>needle in code</code></pre>")
	_, plain := renderPlain(t, content, []string{"needle"}, 80)
	if plain != "needle in code" {
		t.Errorf("rendered %q", plain)
	}
}

func TestRenderWraps(t *testing.T) {
	content := schema.NewTextMessage("alpha beta gamma delta", "")
	_, plain := renderPlain(t, content, nil, 11)
	for _, line := range strings.Split(plain, "\n") {
		if width := ansi.StringWidth(line); width > 11 {
			t.Errorf("line %q is %d wide, limit 11", line, width)
		}
	}
	if strings.Count(plain, "\n") == 0 {
		t.Errorf("text not wrapped: %q", plain)
	}
}
