// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/net/html"

	"github.com/bureau-foundation/roomview/lib/emoji"
	"github.com/bureau-foundation/roomview/lib/highlight"
	"github.com/bureau-foundation/roomview/lib/htmlbody"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/tui"
)

// BodyRenderer turns message content into styled terminal text. The
// content goes through the same sanitizing and highlighting pipeline
// as HTML output; the resulting markup is then drawn with lipgloss.
type BodyRenderer struct {
	Theme   tui.Theme
	Options htmlbody.BodyOptions
}

// Render returns content wrapped to width with terms highlighted.
func (renderer BodyRenderer) Render(content schema.MessageContent, terms []string, width int) (string, error) {
	options := renderer.Options
	if options.HighlightClass == "" {
		options.HighlightClass = highlight.DefaultClass
	}
	// A link wrapper around matches has no meaning in the terminal.
	options.HighlightLink = ""

	body, err := htmlbody.BodyToHTML(content, terms, options)
	if err != nil {
		return "", err
	}

	// The output always goes to the TUI, so the profile is fixed
	// rather than detected from the environment.
	lip := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lip.SetColorProfile(termenv.ANSI256)

	writer := &terminalWriter{
		lip:            lip,
		theme:          renderer.Theme,
		highlightClass: options.HighlightClass,
		preserveSpace:  !body.IsHTML,
		atLineStart:    true,
	}
	writer.walk(body.HTML)
	text := strings.TrimRight(writer.out.String(), "\n")
	if body.BigEmoji {
		text = lip.NewStyle().Bold(true).Render(text)
	}
	if width > 0 {
		text = ansi.Wrap(text, width, "")
	}
	return text, nil
}

// inlineStyle is one entry of the open-element stack.
type inlineStyle struct {
	tag       string
	bold      bool
	italic    bool
	underline bool
	strike    bool
	code      bool
	link      bool
	match     bool
	color     string
	href      string
	linkText  strings.Builder
}

type listState struct {
	ordered bool
	next    int
}

type codeSegment struct {
	text  string
	match bool
}

type preBlock struct {
	language string
	segments []codeSegment
	// spans records, per open span, whether it is a search match.
	spans    []bool
	matches  int
	hasMatch bool
}

type terminalWriter struct {
	lip            *lipgloss.Renderer
	theme          tui.Theme
	highlightClass string
	preserveSpace  bool

	out         strings.Builder
	stack       []*inlineStyle
	lists       []listState
	quoteDepth  int
	atLineStart bool
	cell        int
	pre         *preBlock
}

func (writer *terminalWriter) walk(markup string) {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return
		case html.TextToken:
			writer.text(string(tokenizer.Text()))
		case html.StartTagToken:
			token := tokenizer.Token()
			writer.start(token)
		case html.SelfClosingTagToken:
			token := tokenizer.Token()
			writer.start(token)
			writer.end(token.Data)
		case html.EndTagToken:
			token := tokenizer.Token()
			writer.end(token.Data)
		}
	}
}

func attribute(token html.Token, name string) string {
	for _, attr := range token.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func hasClass(token html.Token, class string) bool {
	return class != "" && strings.Contains(" "+attribute(token, "class")+" ", " "+class+" ")
}

func (writer *terminalWriter) start(token html.Token) {
	if writer.pre != nil {
		switch token.Data {
		case "code":
			for _, class := range strings.Fields(attribute(token, "class")) {
				if language, ok := strings.CutPrefix(class, "language-"); ok {
					writer.pre.language = language
				}
			}
		case "span":
			match := hasClass(token, writer.highlightClass)
			writer.pre.spans = append(writer.pre.spans, match)
			if match {
				writer.pre.matches++
				writer.pre.hasMatch = true
			}
		}
		return
	}

	switch token.Data {
	case "br":
		writer.lineBreak(true)
	case "hr":
		writer.lineBreak(false)
		writer.linePrefix()
		writer.out.WriteString(writer.lip.NewStyle().Foreground(writer.theme.BorderColor).Render("───"))
		writer.lineBreak(false)
	case "p", "div", "h3", "h4", "h5", "h6", "tr", "table", "thead", "tbody", "caption":
		writer.lineBreak(false)
		writer.cell = 0
		if strings.HasPrefix(token.Data, "h") && len(token.Data) == 2 {
			writer.push(&inlineStyle{tag: token.Data, bold: true})
		}
	case "blockquote":
		writer.lineBreak(false)
		writer.quoteDepth++
	case "ul", "ol", "nl":
		writer.lineBreak(false)
		writer.lists = append(writer.lists, listState{ordered: token.Data == "ol", next: 1})
	case "li":
		writer.lineBreak(false)
		writer.linePrefix()
		writer.out.WriteString(writer.listMarker())
	case "td", "th":
		if writer.cell > 0 {
			writer.out.WriteString(writer.lip.NewStyle().Foreground(writer.theme.BorderColor).Render(" │ "))
		}
		writer.cell++
		if token.Data == "th" {
			writer.push(&inlineStyle{tag: token.Data, bold: true})
		}
	case "pre":
		writer.lineBreak(false)
		writer.pre = &preBlock{}
	case "b", "strong":
		writer.push(&inlineStyle{tag: token.Data, bold: true})
	case "i", "em":
		writer.push(&inlineStyle{tag: token.Data, italic: true})
	case "u":
		writer.push(&inlineStyle{tag: token.Data, underline: true})
	case "del", "strike", "s":
		writer.push(&inlineStyle{tag: token.Data, strike: true})
	case "code":
		writer.push(&inlineStyle{tag: token.Data, code: true})
	case "a":
		writer.push(&inlineStyle{tag: token.Data, link: true, href: attribute(token, "href")})
	case "font":
		color := attribute(token, "color")
		if !strings.HasPrefix(color, "#") {
			color = ""
		}
		writer.push(&inlineStyle{tag: token.Data, color: color})
	case "span":
		writer.push(&inlineStyle{tag: token.Data, match: hasClass(token, writer.highlightClass)})
	case "img":
		writer.image(token)
	}
}

func (writer *terminalWriter) end(tag string) {
	if writer.pre != nil {
		switch tag {
		case "span":
			if spans := writer.pre.spans; len(spans) > 0 {
				if spans[len(spans)-1] {
					writer.pre.matches--
				}
				writer.pre.spans = spans[:len(spans)-1]
			}
		case "pre":
			writer.flushPre()
		}
		return
	}

	switch tag {
	case "p", "div", "tr", "table", "caption":
		writer.lineBreak(false)
	case "h3", "h4", "h5", "h6":
		writer.pop(tag)
		writer.lineBreak(false)
	case "blockquote":
		writer.lineBreak(false)
		writer.quoteDepth = max(writer.quoteDepth-1, 0)
	case "ul", "ol", "nl":
		writer.lineBreak(false)
		if len(writer.lists) > 0 {
			writer.lists = writer.lists[:len(writer.lists)-1]
		}
	case "li":
		writer.lineBreak(false)
	case "th":
		writer.pop(tag)
	case "a":
		entry := writer.pop(tag)
		if entry != nil && entry.href != "" && entry.linkText.String() != entry.href {
			writer.out.WriteString(writer.lip.NewStyle().Foreground(writer.theme.FaintText).Render(" <" + entry.href + ">"))
		}
	case "b", "strong", "i", "em", "u", "del", "strike", "s", "code", "font", "span":
		writer.pop(tag)
	}
}

func (writer *terminalWriter) push(entry *inlineStyle) {
	writer.stack = append(writer.stack, entry)
}

// pop removes the innermost open element named tag, along with any
// unclosed elements inside it.
func (writer *terminalWriter) pop(tag string) *inlineStyle {
	for index := len(writer.stack) - 1; index >= 0; index-- {
		if writer.stack[index].tag == tag {
			entry := writer.stack[index]
			writer.stack = writer.stack[:index]
			return entry
		}
	}
	return nil
}

func (writer *terminalWriter) style() lipgloss.Style {
	style := writer.lip.NewStyle()
	for _, entry := range writer.stack {
		if entry.bold {
			style = style.Bold(true)
		}
		if entry.italic {
			style = style.Italic(true)
		}
		if entry.underline {
			style = style.Underline(true)
		}
		if entry.strike {
			style = style.Strikethrough(true)
		}
		if entry.code {
			style = style.Background(writer.theme.SelectedBackground)
		}
		if entry.color != "" {
			style = style.Foreground(lipgloss.Color(entry.color))
		}
		if entry.link {
			style = style.Underline(true).Foreground(writer.theme.LinkForeground)
		}
		if entry.match {
			style = style.
				Bold(true).
				Foreground(writer.theme.SearchHighlightForeground).
				Background(writer.theme.SearchHighlightBackground)
		}
	}
	return style
}

func (writer *terminalWriter) matchStyle() lipgloss.Style {
	return writer.lip.NewStyle().
		Bold(true).
		Foreground(writer.theme.SearchHighlightForeground).
		Background(writer.theme.SearchHighlightBackground)
}

func (writer *terminalWriter) text(text string) {
	if writer.pre != nil {
		writer.pre.segments = append(writer.pre.segments, codeSegment{text: text, match: writer.pre.matches > 0})
		return
	}
	for _, entry := range writer.stack {
		if entry.link {
			entry.linkText.WriteString(text)
		}
	}

	if writer.preserveSpace {
		for index, line := range strings.Split(text, "\n") {
			if index > 0 {
				writer.lineBreak(true)
			}
			writer.inline(line)
		}
		return
	}

	collapsed := collapseSpace(text)
	if writer.atLineStart {
		collapsed = strings.TrimLeft(collapsed, " ")
	}
	writer.inline(collapsed)
}

func (writer *terminalWriter) inline(text string) {
	if text == "" {
		return
	}
	writer.linePrefix()
	writer.out.WriteString(writer.style().Render(text))
}

func (writer *terminalWriter) image(token html.Token) {
	alt := attribute(token, "alt")
	if hasClass(token, "emoji") {
		if grapheme, ok := emoji.FromShortName(alt); ok {
			writer.inline(grapheme)
			return
		}
		writer.inline(alt)
		return
	}
	writer.linePrefix()
	writer.out.WriteString(writer.lip.NewStyle().Foreground(writer.theme.FaintText).Render("[image]"))
}

// flushPre writes a code block. Blocks without search matches are
// coloured by chroma; blocks with matches keep the match styling.
func (writer *terminalWriter) flushPre() {
	block := writer.pre
	writer.pre = nil

	var code strings.Builder
	for _, segment := range block.segments {
		code.WriteString(segment.text)
	}
	source := strings.TrimRight(code.String(), "\n")

	var rendered string
	if block.hasMatch {
		matchStyle := writer.matchStyle()
		var builder strings.Builder
		for _, segment := range block.segments {
			if segment.match {
				builder.WriteString(matchStyle.Render(segment.text))
			} else {
				builder.WriteString(segment.text)
			}
		}
		rendered = strings.TrimRight(builder.String(), "\n")
	} else {
		var builder strings.Builder
		if err := quick.Highlight(&builder, source, block.language, "terminal256", writer.theme.CodeStyle); err != nil {
			rendered = source
		} else {
			rendered = strings.TrimRight(builder.String(), "\n")
		}
	}

	lines := strings.Split(rendered, "\n")
	// A trailing reset sequence after the last newline belongs to the
	// last visible line.
	for len(lines) > 1 && ansi.Strip(lines[len(lines)-1]) == "" {
		lines[len(lines)-2] += lines[len(lines)-1]
		lines = lines[:len(lines)-1]
	}
	for index, line := range lines {
		if index > 0 {
			writer.lineBreak(true)
		}
		writer.linePrefix()
		writer.out.WriteString(line)
	}
	writer.lineBreak(false)
}

// lineBreak ends the current line. Unless force is set, nothing is
// written when already at the start of a line.
func (writer *terminalWriter) lineBreak(force bool) {
	if writer.atLineStart && !force {
		return
	}
	writer.out.WriteByte('\n')
	writer.atLineStart = true
}

// linePrefix writes the blockquote bars and list indentation when at
// the start of a line.
func (writer *terminalWriter) linePrefix() {
	if !writer.atLineStart {
		return
	}
	writer.atLineStart = false
	if writer.quoteDepth > 0 {
		bar := writer.lip.NewStyle().Foreground(writer.theme.BorderColor).Render("│ ")
		writer.out.WriteString(strings.Repeat(bar, writer.quoteDepth))
	}
	if depth := len(writer.lists); depth > 1 {
		writer.out.WriteString(strings.Repeat("  ", depth-1))
	}
}

func (writer *terminalWriter) listMarker() string {
	if len(writer.lists) == 0 {
		return "• "
	}
	list := &writer.lists[len(writer.lists)-1]
	if !list.ordered {
		return "• "
	}
	marker := strconv.Itoa(list.next) + ". "
	list.next++
	return marker
}

func collapseSpace(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	space := false
	for _, character := range text {
		if unicode.IsSpace(character) {
			if !space {
				builder.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		builder.WriteRune(character)
	}
	return builder.String()
}
