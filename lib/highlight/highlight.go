// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package highlight marks search terms inside already-sanitized text.
//
// [Apply] splits a snippet into matched and unmatched [Fragment]s.
// Terms are tried longest first: the snippet is scanned for the first
// term, and every gap between matches is searched again with the
// remaining terms. A shorter term can therefore match only in text not
// claimed by a longer one, so "foobar" and "foo" against "foobar"
// yield one match.
//
// Matching is case-insensitive under Unicode simple case folding and
// fragments keep the snippet's own casing. Concatenating the Text of
// every fragment reproduces the snippet exactly.
//
// Renderers turn fragments into output: [HTML] for message bodies and
// [Styled] for terminal text.
package highlight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fragment is one span of a highlighted snippet.
type Fragment struct {
	Text    string
	Matched bool
}

// Apply splits snippet into fragments, marking case-insensitive
// occurrences of terms. terms should be ordered longest first (see
// SortTerms). Empty terms are skipped. With no usable terms, or an
// empty snippet, the result is a single unmatched fragment.
func Apply(snippet string, terms []string) []Fragment {
	for len(terms) > 0 && terms[0] == "" {
		terms = terms[1:]
	}
	if len(terms) == 0 || snippet == "" {
		return []Fragment{{Text: snippet}}
	}

	term := terms[0]
	var fragments []Fragment
	lastOffset := 0
	for {
		start, end := indexFold(snippet, term, lastOffset)
		if start < 0 {
			break
		}
		if start > lastOffset {
			fragments = append(fragments, Apply(snippet[lastOffset:start], terms[1:])...)
		}
		fragments = append(fragments, Fragment{Text: snippet[start:end], Matched: true})
		lastOffset = end
	}
	if lastOffset < len(snippet) {
		fragments = append(fragments, Apply(snippet[lastOffset:], terms[1:])...)
	}
	return fragments
}

// indexFold returns the byte range of the first case-insensitive match
// of term in text at or after from, or (-1, -1). term must be
// non-empty.
func indexFold(text, term string, from int) (start, end int) {
	for index := from; index < len(text); {
		if matchEnd, ok := matchFoldAt(text, index, term); ok {
			return index, matchEnd
		}
		_, size := utf8.DecodeRuneInString(text[index:])
		index += size
	}
	return -1, -1
}

func matchFoldAt(text string, index int, term string) (int, bool) {
	position := index
	for _, termRune := range term {
		if position >= len(text) {
			return 0, false
		}
		textRune, size := utf8.DecodeRuneInString(text[position:])
		if !equalFoldRune(textRune, termRune) {
			return 0, false
		}
		position += size
	}
	return position, true
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for folded := unicode.SimpleFold(a); folded != a; folded = unicode.SimpleFold(folded) {
		if folded == b {
			return true
		}
	}
	return false
}

// SortTerms returns terms ordered by descending rune length with empty
// and case-insensitively duplicate terms removed. Ties keep input
// order.
func SortTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	result := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, term)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return utf8.RuneCountInString(result[i]) > utf8.RuneCountInString(result[j])
	})
	return result
}

// Text concatenates fragment texts.
func Text(fragments []Fragment) string {
	var builder strings.Builder
	for _, fragment := range fragments {
		builder.WriteString(fragment.Text)
	}
	return builder.String()
}

// MatchCount returns the number of matched fragments.
func MatchCount(fragments []Fragment) int {
	count := 0
	for _, fragment := range fragments {
		if fragment.Matched {
			count++
		}
	}
	return count
}
