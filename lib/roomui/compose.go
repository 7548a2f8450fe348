// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roomview/lib/htmlbody"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/messaging"
)

// MessageSender sends room messages. *messaging.DirectSession
// implements it.
type MessageSender interface {
	SendMessage(ctx context.Context, roomID ref.RoomID, content schema.MessageContent) (string, error)
}

// messageSentMsg reports the end of a send started from the composer.
type messageSentMsg struct {
	text string
	err  error
}

// ComposeMessage builds the m.room.message content for composer text.
// Markdown is rendered into formatted_body; text without any markdown
// is sent as a plain body.
func ComposeMessage(text string) (schema.MessageContent, error) {
	formatted, ok, err := htmlbody.FormatMarkdown(text)
	if err != nil {
		return schema.MessageContent{}, err
	}
	if !ok {
		formatted = ""
	}
	return schema.NewTextMessage(text, formatted), nil
}

// sendCommand sends text off the program goroutine.
func (model Model) sendCommand(text string) tea.Cmd {
	ctx := model.config.Context
	roomID := model.config.RoomID
	sender := model.config.Sender
	return func() tea.Msg {
		content, err := ComposeMessage(text)
		if err == nil {
			_, err = sender.SendMessage(ctx, roomID, content)
		}
		return messageSentMsg{text: text, err: err}
	}
}

func (model Model) handleComposeKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.composeInput.Blur()
		model.focus = FocusTimeline
		return model, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(model.composeInput.Value())
		if text == "" {
			return model, nil
		}
		return model, model.sendCommand(text)
	}
	var command tea.Cmd
	model.composeInput, command = model.composeInput.Update(message)
	return model, command
}

func (model Model) handleMessageSent(message messageSentMsg) (tea.Model, tea.Cmd) {
	if message.err != nil {
		model.config.Logger.Debug("sending message failed", "room_id", model.config.RoomID, "error", message.err)
		return model.setStatus("Message not sent: "+messaging.ServerMessage(message.err), slog.LevelWarn)
	}
	if strings.TrimSpace(model.composeInput.Value()) == message.text {
		model.composeInput.SetValue("")
	}
	model.refreshTimeline(true)
	return model, nil
}
