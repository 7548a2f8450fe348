// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides terminal building blocks for the room viewer:
// the color theme, ANSI-aware overlay splicing, modal dialogs, the
// scrollbar, and fzf-backed fuzzy matching.
//
// Components here know nothing about Matrix. The roomui package
// composes them with room state into a bubbletea program.
package tui
