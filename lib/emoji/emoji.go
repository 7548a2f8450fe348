// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package emoji replaces emoji in message HTML with image references
// and answers "is this body only emoji" for big-emoji rendering.
//
// The codepoint to short name table comes from kyokomi/emoji. Text is
// segmented into grapheme clusters with uniseg so multi-codepoint
// sequences (skin tones, ZWJ families, flags) resolve as one emoji.
package emoji

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	kyokomi "github.com/kyokomi/emoji/v2"
	"github.com/rivo/uniseg"
)

const variationSelector16 = "\ufe0f"

var (
	tableOnce sync.Once
	// shortNames maps an emoji grapheme (with U+FE0F removed) to its
	// canonical short name, including colons.
	shortNames map[string]string
)

func loadTable() {
	tableOnce.Do(func() {
		reverse := kyokomi.RevCodeMap()
		shortNames = make(map[string]string, len(reverse))
		for sequence, aliases := range reverse {
			if len(aliases) == 0 {
				continue
			}
			key := normalize(sequence)
			if key == "" || isPlainASCII(key) {
				continue
			}
			for _, alias := range aliases {
				if existing, ok := shortNames[key]; !ok || preferAlias(alias, existing) {
					shortNames[key] = alias
				}
			}
		}
	})
}

// preferAlias picks the shortest alias, then the alphabetically first,
// so ":smile:" wins over ":grinning_face_with_smiling_eyes:".
func preferAlias(candidate, existing string) bool {
	if len(candidate) != len(existing) {
		return len(candidate) < len(existing)
	}
	return candidate < existing
}

func normalize(sequence string) string {
	return strings.TrimSpace(strings.ReplaceAll(sequence, variationSelector16, ""))
}

func isPlainASCII(text string) bool {
	for index := 0; index < len(text); index++ {
		if text[index] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ShortName returns the short name (e.g. ":smile:") for a single emoji
// grapheme cluster.
func ShortName(grapheme string) (string, bool) {
	loadTable()
	name, ok := shortNames[normalize(grapheme)]
	return name, ok
}

// FromShortName returns the emoji for a short name such as ":smile:".
func FromShortName(name string) (string, bool) {
	sequence, ok := kyokomi.CodeMap()[kyokomi.NormalizeShortCode(name)]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(sequence), true
}

// Codepoints returns the lowercase hex codepoints of grapheme joined
// by "-", without U+FE0F. This is the file name scheme of the common
// emoji image sets.
func Codepoints(grapheme string) string {
	var parts []string
	for _, codepoint := range normalize(grapheme) {
		parts = append(parts, fmt.Sprintf("%x", codepoint))
	}
	return strings.Join(parts, "-")
}

// Transcoder rewrites emoji in HTML into <img> references.
type Transcoder struct {
	// ImageBase is prepended to "<codepoints>.svg".
	ImageBase string
	// Class is the img class attribute. Defaults to "emoji".
	Class string
}

// ImageTag returns the <img> markup for an emoji grapheme, or false if
// grapheme is not a known emoji.
func (transcoder Transcoder) ImageTag(grapheme string) (string, bool) {
	name, ok := ShortName(grapheme)
	if !ok {
		return "", false
	}
	class := transcoder.Class
	if class == "" {
		class = "emoji"
	}
	source := transcoder.ImageBase + Codepoints(grapheme) + ".svg"
	return fmt.Sprintf(`<img class="%s" title="%s" alt="%s" src="%s"/>`,
		html.EscapeString(class),
		html.EscapeString(name),
		html.EscapeString(name),
		html.EscapeString(source),
	), true
}

// ToImage replaces emoji in the text content of htmlText with image
// tags. Markup (tags and their attributes) and character references
// are copied unchanged.
func (transcoder Transcoder) ToImage(htmlText string) string {
	var builder strings.Builder
	builder.Grow(len(htmlText))

	for len(htmlText) > 0 {
		switch htmlText[0] {
		case '<':
			end := strings.IndexByte(htmlText, '>')
			if end < 0 {
				builder.WriteString(htmlText)
				return builder.String()
			}
			builder.WriteString(htmlText[:end+1])
			htmlText = htmlText[end+1:]
		default:
			end := strings.IndexByte(htmlText, '<')
			if end < 0 {
				end = len(htmlText)
			}
			transcoder.writeText(&builder, htmlText[:end])
			htmlText = htmlText[end:]
		}
	}
	return builder.String()
}

func (transcoder Transcoder) writeText(builder *strings.Builder, text string) {
	if isPlainASCII(text) {
		builder.WriteString(text)
		return
	}
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		cluster := graphemes.Str()
		if tag, ok := transcoder.ImageTag(cluster); ok {
			builder.WriteString(tag)
		} else {
			builder.WriteString(cluster)
		}
	}
}

// IsOnlyEmoji reports whether text, with surrounding whitespace
// trimmed, is non-empty and consists solely of emoji graphemes.
func IsOnlyEmoji(text string) bool {
	text = strings.TrimFunc(text, unicode.IsSpace)
	if text == "" || isPlainASCII(text) {
		return false
	}
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		if _, ok := ShortName(graphemes.Str()); !ok {
			return false
		}
	}
	return true
}
