// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmlbody

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "allowed formatting kept",
			input: `<b>bold</b> and <em>em</em>`,
			want:  `<b>bold</b> and <em>em</em>`,
		},
		{
			name:  "disallowed tag dropped text kept",
			input: `<h1>Title</h1><span>inner</span>`,
			want:  `Titleinner`,
		},
		{
			name:  "script content discarded",
			input: `a<script>alert("x")</script>b<style>p{}</style>c`,
			want:  `abc`,
		},
		{
			name:  "event handler attribute removed",
			input: `<p onclick="evil()">hi</p>`,
			want:  `<p>hi</p>`,
		},
		{
			name:  "font color kept",
			input: `<font color="#ff0000" size="7">red</font>`,
			want:  `<font color="#ff0000">red</font>`,
		},
		{
			name:  "external link gets target blank",
			input: `<a href="https://example.org" target="_self">x</a>`,
			want:  `<a href="https://example.org" target="_blank">x</a>`,
		},
		{
			name:  "internal link loses target",
			input: `<a href="https://riot.im/develop/#/room/!a:b" target="_blank">room</a>`,
			want:  `<a href="https://riot.im/develop/#/room/!a:b">room</a>`,
		},
		{
			name:  "javascript href removed",
			input: `<a href="java&#x09;script:alert(1)">x</a>`,
			want:  `<a target="_blank">x</a>`,
		},
		{
			name:  "relative href kept",
			input: `<a href="/path">x</a>`,
			want:  `<a href="/path" target="_blank">x</a>`,
		},
		{
			name:  "img data scheme allowed",
			input: `<img src="data:image/png;base64,AAAA" onerror="x">`,
			want:  `<img src="data:image/png;base64,AAAA" />`,
		},
		{
			name:  "data scheme not allowed on links",
			input: `<a href="data:text/html,hi">x</a>`,
			want:  `<a target="_blank">x</a>`,
		},
		{
			name:  "self closing br",
			input: `one<br>two`,
			want:  `one<br />two`,
		},
		{
			name:  "unclosed tags are closed",
			input: `<blockquote><p>quote`,
			want:  `<blockquote><p>quote</p></blockquote>`,
		},
		{
			name:  "stray end tag dropped",
			input: `text</b>`,
			want:  `text`,
		},
		{
			name:  "text re-escaped",
			input: `1 &lt; 2 &amp;&amp; 3 > 2`,
			want:  `1 &lt; 2 &amp;&amp; 3 &gt; 2`,
		},
		{
			name:  "code language class kept other classes dropped",
			input: `<pre><code class="language-go evil">x</code></pre><code class="evil">y</code>`,
			want:  `<pre><code class="language-go">x</code></pre><code>y</code>`,
		},
		{
			name:  "comments removed",
			input: `a<!-- hidden -->b`,
			want:  `ab`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Sanitize(test.input, Options{})
			if err != nil {
				t.Fatalf("Sanitize: %v", err)
			}
			if got != test.want {
				t.Errorf("Sanitize(%q)\n got  %q\n want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSanitizeTextFilterIsPerCall(t *testing.T) {
	upper := func(text string) string { return strings.ToUpper(text) }
	got, err := Sanitize(`<b>loud</b> <i title="x">words</i>`, Options{TextFilter: upper})
	if err != nil {
		t.Fatal(err)
	}
	if got != `<b>LOUD</b> <i>WORDS</i>` {
		t.Errorf("filtered = %q", got)
	}

	plain, err := Sanitize(`<b>quiet</b>`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if plain != `<b>quiet</b>` {
		t.Errorf("filter leaked into the next call: %q", plain)
	}
}

func TestSanitizeRecoversFilterPanic(t *testing.T) {
	_, err := Sanitize(`<p>boom</p>`, Options{TextFilter: func(string) string { panic("broken filter") }})
	if err == nil || !strings.Contains(err.Error(), "broken filter") {
		t.Fatalf("Sanitize error = %v, want recovered panic", err)
	}

	after, err := Sanitize(`<p>fine</p>`, Options{})
	if err != nil || after != `<p>fine</p>` {
		t.Fatalf("Sanitize after panic = %q, %v", after, err)
	}
}

func TestWithInternalLink(t *testing.T) {
	policy, err := DefaultPolicy().WithInternalLink(`^https://chat\.example\.org/#/`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Sanitize(`<a href="https://chat.example.org/#/room/x">r</a>`, Options{Policy: policy})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "target") {
		t.Errorf("internal link kept target: %q", got)
	}
	if _, err := DefaultPolicy().WithInternalLink("("); err == nil {
		t.Error("WithInternalLink accepted an invalid pattern")
	}
}
