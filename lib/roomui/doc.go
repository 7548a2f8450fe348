// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomui is the terminal room view: a bubbletea model that
// shows the room header, the message timeline, and the member list
// with its invite box. When a [MessageSender] is configured, a
// composer sends markdown through [ComposeMessage].
//
// Message bodies pass through [htmlbody.BodyToHTML] like any other
// output and the resulting markup is drawn with lipgloss by
// [BodyRenderer]. Code blocks are coloured with chroma and search
// terms are highlighted in both prose and code.
//
// Work that blocks (invites, sends, the shared history warning) runs outside
// the program goroutine. A [Bridge] carries its dialogs, progress and
// room change notifications back into the program, and [LogHandler]
// puts warnings in the status line while the TUI owns the terminal.
package roomui
