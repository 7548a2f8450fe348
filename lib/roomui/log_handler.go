// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// logRecordMsg puts a log line in the status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// statusFadeMsg clears the status line if it still shows the message
// with the same serial.
type statusFadeMsg struct{ serial int }

// statusFadeDelay is how long a status message stays before the help
// line returns.
const statusFadeDelay = 5 * time.Second

// LogHandler is a slog.Handler that shows records in the status bar
// of the program attached to its Bridge. Records below the level are
// dropped. Handlers derived with WithAttrs and WithGroup share the
// bridge.
type LogHandler struct {
	level  slog.Leveler
	bridge *Bridge
	attrs  []slog.Attr
	groups []string
}

// NewLogHandler returns a handler delivering records at or above
// level through bridge.
func NewLogHandler(bridge *Bridge, level slog.Leveler) *LogHandler {
	return &LogHandler{level: level, bridge: bridge}
}

// Enabled implements slog.Handler.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle formats the record as "message (key=value, ...)".
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	parts := make([]string, 0, len(handler.attrs)+record.NumAttrs())
	for _, attr := range handler.attrs {
		parts = append(parts, formatAttr(attr))
	}
	prefix := strings.Join(handler.groups, ".")
	record.Attrs(func(attr slog.Attr) bool {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		parts = append(parts, formatAttr(attr))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	handler.bridge.sendAsync(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

func formatAttr(attr slog.Attr) string {
	return fmt.Sprintf("%s=%s", attr.Key, attr.Value.Resolve())
}

// WithAttrs implements slog.Handler. Keys are qualified by the
// current groups.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(handler.groups, ".")
	derived := handler.clone()
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		derived.attrs = append(derived.attrs, attr)
	}
	return derived
}

// WithGroup implements slog.Handler.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	derived := handler.clone()
	if name != "" {
		derived.groups = append(derived.groups, name)
	}
	return derived
}

func (handler *LogHandler) clone() *LogHandler {
	return &LogHandler{
		level:  handler.level,
		bridge: handler.bridge,
		attrs:  slices.Clone(handler.attrs),
		groups: slices.Clone(handler.groups),
	}
}
