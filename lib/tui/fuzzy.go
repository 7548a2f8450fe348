// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sort"
	"sync"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one candidate string against
// a query. A zero Score means no match.
type FuzzyResult struct {
	Score int
	// Positions holds the rune indices of matched characters in
	// ascending order.
	Positions []int
}

// Matched reports whether the query matched the candidate.
func (result FuzzyResult) Matched() bool {
	return result.Score > 0
}

var fuzzyInit sync.Once

// FuzzyMatch scores text against pattern using fzf's V2 algorithm.
// Matching is case-insensitive. The slab may be nil; callers that
// match many candidates in a loop should allocate one with
// util.MakeSlab and reuse it.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := make([]rune, len(pattern))
	for index, character := range pattern {
		lowered[index] = unicode.ToLower(character)
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, false, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}

	matched := FuzzyResult{Score: result.Score}
	if positions != nil {
		matched.Positions = append([]int(nil), (*positions)...)
		sort.Ints(matched.Positions)
	}
	return matched
}
