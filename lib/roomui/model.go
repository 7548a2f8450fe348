// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/roomview/lib/clock"
	"github.com/bureau-foundation/roomview/lib/invite"
	"github.com/bureau-foundation/roomview/lib/memberlist"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roomheader"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/schema"
	"github.com/bureau-foundation/roomview/lib/tui"
	"github.com/bureau-foundation/roomview/messaging"
)

// RoomSource is the room state the timeline reads. *roomstate.Store
// implements it.
type RoomSource interface {
	Timeline(roomID ref.RoomID) []messaging.Event
	RoomName(roomID ref.RoomID) string
}

// MemberSource is the member list. *memberlist.MemberList implements
// it.
type MemberSource interface {
	View(query string) memberlist.View
	ShowAll()
	Member(userID ref.UserID) (*roster.Member, bool)
}

// Inviter runs the invite workflow. *invite.Workflow implements it.
type Inviter interface {
	Invite(ctx context.Context, roomID ref.RoomID, input string) ([]invite.Result, error)
}

// Config configures a Model. Room, Members and Invites are required.
type Config struct {
	// Context bounds invite submissions.
	Context context.Context

	RoomID  ref.RoomID
	Room    RoomSource
	Members MemberSource
	Invites Inviter

	// Sender, when set, enables the message composer.
	Sender MessageSender

	Theme    tui.Theme
	Keys     KeyMap
	Renderer BodyRenderer

	// OnCancel, when set, shows the header cancel control. Esc then
	// calls it and closes the view.
	OnCancel func()

	Clock  clock.Clock
	Logger *slog.Logger
}

// Focus identifies which region receives keys.
type Focus int

const (
	FocusTimeline Focus = iota
	FocusMembers
	FocusInvite
	FocusSearch
	FocusCompose
)

// inviteDoneMsg reports the end of an invite workflow run.
type inviteDoneMsg struct {
	input   string
	results []invite.Result
	err     error
}

// Layout constants.
const (
	memberPaneMin = 20
	memberPaneMax = 36
	footerLines   = 2
)

// Model is the bubbletea model of the room view: header, timeline,
// member list with invite box, and a status line. Dialogs requested
// through a Bridge are stacked over the view.
type Model struct {
	config Config
	theme  tui.Theme
	keys   KeyMap
	header roomheader.Header

	width  int
	height int
	ready  bool
	focus  Focus

	timeline viewport.Model

	memberRows   []MemberRow
	memberCursor int
	memberOffset int

	inviteInput  textinput.Model
	searchInput  textinput.Model
	composeInput textinput.Model
	query        string

	spinner  spinner.Model
	inviting bool

	dialog  *dialogRequestMsg
	pending []dialogRequestMsg

	status       string
	statusLevel  slog.Level
	statusSerial int
}

// NewModel builds the model and reads the initial room state.
func NewModel(config Config) Model {
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Theme.CodeStyle == "" {
		config.Theme = tui.DefaultTheme
	}
	if len(config.Keys.Quit.Keys()) == 0 {
		config.Keys = DefaultKeyMap
	}
	config.Renderer.Theme = config.Theme

	inviteInput := textinput.New()
	inviteInput.Placeholder = "Invite to this room"
	inviteInput.Prompt = "+ "

	searchInput := textinput.New()
	searchInput.Placeholder = "Search members and messages"
	searchInput.Prompt = "/ "

	composeInput := textinput.New()
	composeInput.Placeholder = "Send a message (markdown)"
	composeInput.Prompt = "> "

	model := Model{
		config:       config,
		theme:        config.Theme,
		keys:         config.Keys,
		header:       roomheader.New(config.Room.RoomName(config.RoomID), config.OnCancel, config.Theme),
		timeline:     viewport.New(0, 0),
		inviteInput:  inviteInput,
		searchInput:  searchInput,
		composeInput: composeInput,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(config.Theme.InvitedText)),
		),
	}
	model.refreshMembers()
	return model
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. A visible dialog takes every key;
// otherwise keys route by focus.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.layout()
		model.refreshTimeline(true)
		return model, nil

	case tea.KeyMsg:
		if model.dialog != nil {
			return model.updateDialog(message)
		}
		return model.handleKey(message)

	case dialogRequestMsg:
		if model.dialog == nil {
			model.dialog = &message
		} else {
			model.pending = append(model.pending, message)
		}
		return model, nil

	case invitingMsg:
		model.inviting = message.inviting
		if model.inviting {
			return model, model.spinner.Tick
		}
		return model, nil

	case spinner.TickMsg:
		if !model.inviting {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command

	case inviteDoneMsg:
		return model.handleInviteDone(message)

	case messageSentMsg:
		return model.handleMessageSent(message)

	case membersChangedMsg:
		model.refreshMembers()
		return model, nil

	case roomChangedMsg:
		model.header.Title = model.config.Room.RoomName(model.config.RoomID)
		model.refreshTimeline(model.timeline.AtBottom())
		return model, nil

	case logRecordMsg:
		return model.setStatus(message.Summary, message.Level)

	case statusFadeMsg:
		if message.serial == model.statusSerial {
			model.status = ""
		}
		return model, nil
	}

	if model.dialog != nil {
		return model.updateDialog(message)
	}
	return model, nil
}

func (model Model) updateDialog(message tea.Msg) (tea.Model, tea.Cmd) {
	command := model.dialog.dialog.Update(message)
	if !model.dialog.dialog.Done() {
		return model, command
	}

	finished := *model.dialog
	result := finished.dialog.Result()
	if finished.reply != nil {
		finished.reply <- result
	}
	model.dialog = nil
	if len(model.pending) > 0 {
		next := model.pending[0]
		model.pending = model.pending[1:]
		model.dialog = &next
	}
	if finished.then != nil {
		return model, tea.Batch(command, finished.then(result))
	}
	return model, command
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.focus {
	case FocusInvite:
		return model.handleInviteKey(message)
	case FocusSearch:
		return model.handleSearchKey(message)
	case FocusCompose:
		return model.handleComposeKey(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Cancel):
		if model.query != "" {
			model.setQuery("")
			return model, nil
		}
		if model.header.Update(message) {
			return model, tea.Quit
		}
		return model, nil

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusTimeline {
			model.focus = FocusMembers
			if !model.validCursor() {
				model.memberCursor = firstSelectable(model.memberRows)
			}
		} else {
			model.focus = FocusTimeline
		}
		return model, nil

	case key.Matches(message, model.keys.Search):
		model.focus = FocusSearch
		model.searchInput.SetValue(model.query)
		model.searchInput.CursorEnd()
		return model, model.searchInput.Focus()

	case key.Matches(message, model.keys.Invite):
		model.focus = FocusInvite
		return model, model.inviteInput.Focus()

	case key.Matches(message, model.keys.Compose):
		if model.config.Sender == nil {
			return model, nil
		}
		model.focus = FocusCompose
		return model, model.composeInput.Focus()

	case key.Matches(message, model.keys.InviteEmail):
		return model, model.openEmailDialog()

	case key.Matches(message, model.keys.ShowAll):
		model.config.Members.ShowAll()
		model.refreshMembers()
		return model, nil
	}

	if model.focus == FocusMembers {
		return model.handleMemberKey(message)
	}
	return model.handleTimelineKey(message)
}

func (model Model) handleTimelineKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.timeline.ScrollUp(1)
	case key.Matches(message, model.keys.Down):
		model.timeline.ScrollDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.timeline.HalfPageUp()
	case key.Matches(message, model.keys.PageDown):
		model.timeline.HalfPageDown()
	case key.Matches(message, model.keys.Home):
		model.timeline.GotoTop()
	case key.Matches(message, model.keys.End):
		model.timeline.GotoBottom()
	}
	return model, nil
}

func (model Model) handleMemberKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.memberCursor = nextSelectable(model.memberRows, model.memberCursor, -1)
	case key.Matches(message, model.keys.Down):
		model.memberCursor = nextSelectable(model.memberRows, model.memberCursor, 1)
	case key.Matches(message, model.keys.Home):
		model.memberCursor = firstSelectable(model.memberRows)
	case key.Matches(message, model.keys.End):
		model.memberCursor = nextSelectable(model.memberRows, len(model.memberRows), -1)
	case key.Matches(message, model.keys.Select):
		return model.selectMemberRow()
	}
	model.scrollMembersToCursor()
	return model, nil
}

func (model Model) selectMemberRow() (tea.Model, tea.Cmd) {
	if !model.validCursor() {
		return model, nil
	}
	row := model.memberRows[model.memberCursor]
	switch row.Kind {
	case RowOverflow:
		model.config.Members.ShowAll()
		model.refreshMembers()
		return model, nil
	case RowMember:
		member := row.Member
		summary := fmt.Sprintf("%s  %s  power %d", member.UserID, member.Membership, member.PowerLevel)
		return model.setStatus(summary, slog.LevelInfo)
	case RowThirdParty:
		return model.setStatus("invited by "+row.Invite.Sender.String()+", not yet accepted", slog.LevelInfo)
	}
	return model, nil
}

func (model Model) handleInviteKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.inviteInput.Blur()
		model.focus = FocusMembers
		return model, nil
	case tea.KeyEnter:
		input := strings.TrimSpace(model.inviteInput.Value())
		if input == "" || model.inviting {
			return model, nil
		}
		return model, model.inviteCommand(input)
	}
	var command tea.Cmd
	model.inviteInput, command = model.inviteInput.Update(message)
	return model, command
}

func (model Model) handleSearchKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.searchInput.Blur()
		model.focus = FocusTimeline
		model.setQuery("")
		return model, nil
	case tea.KeyEnter:
		model.searchInput.Blur()
		model.focus = FocusTimeline
		return model, nil
	}
	var command tea.Cmd
	model.searchInput, command = model.searchInput.Update(message)
	model.setQuery(model.searchInput.Value())
	return model, command
}

// openEmailDialog collects an address and runs it through the same
// workflow as the invite box.
func (model Model) openEmailDialog() tea.Cmd {
	request := dialogRequestMsg{
		dialog: tui.NewTextInputDialog("Invite new room members", "Email address", "name@example.org", "Invite", model.theme),
		then: func(result tui.DialogResult) tea.Cmd {
			input := strings.TrimSpace(result.Value)
			if !result.Confirmed || input == "" {
				return nil
			}
			return model.inviteCommand(input)
		},
	}
	return func() tea.Msg { return request }
}

// inviteCommand runs the invite workflow off the program goroutine.
// The workflow's dialogs come back as dialogRequestMsg.
func (model Model) inviteCommand(input string) tea.Cmd {
	ctx := model.config.Context
	roomID := model.config.RoomID
	inviter := model.config.Invites
	return func() tea.Msg {
		results, err := inviter.Invite(ctx, roomID, input)
		return inviteDoneMsg{input: input, results: results, err: err}
	}
}

func (model Model) handleInviteDone(message inviteDoneMsg) (tea.Model, tea.Cmd) {
	if message.err != nil {
		if invite.IsCategory(message.err, invite.CategoryAborted) {
			return model.setStatus("Invite cancelled", slog.LevelInfo)
		}
		return model, nil
	}

	succeeded := 0
	for _, result := range message.results {
		if result.Err == nil {
			succeeded++
		}
	}
	if model.inviteInput.Value() == message.input {
		model.inviteInput.SetValue("")
	}
	if succeeded == len(message.results) {
		return model.setStatus(fmt.Sprintf("Invited %d", succeeded), slog.LevelInfo)
	}
	return model.setStatus(fmt.Sprintf("Invited %d of %d", succeeded, len(message.results)), slog.LevelWarn)
}

func (model Model) setStatus(text string, level slog.Level) (tea.Model, tea.Cmd) {
	model.status = text
	model.statusLevel = level
	model.statusSerial++
	serial := model.statusSerial
	return model, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{serial: serial}
	})
}

func (model *Model) setQuery(query string) {
	if query == model.query {
		return
	}
	model.query = query
	model.refreshMembers()
	model.refreshTimeline(false)
}

func (model Model) validCursor() bool {
	return model.memberCursor >= 0 && model.memberCursor < len(model.memberRows) &&
		model.memberRows[model.memberCursor].Selectable()
}

// refreshMembers re-reads the member list, keeping the cursor on the
// same user when it is still listed.
func (model *Model) refreshMembers() {
	var selected ref.UserID
	var selectedKind RowKind = -1
	if model.validCursor() {
		selected = model.memberRows[model.memberCursor].UserID
		selectedKind = model.memberRows[model.memberCursor].Kind
	}

	model.memberRows = MemberRows(model.config.Members.View(model.query))
	model.memberCursor = firstSelectable(model.memberRows)
	for index, row := range model.memberRows {
		if row.Kind == selectedKind && row.Kind == RowMember && row.UserID == selected {
			model.memberCursor = index
			break
		}
	}
	model.scrollMembersToCursor()
}

func (model *Model) scrollMembersToCursor() {
	visible := model.memberListHeight()
	if visible <= 0 || model.memberCursor < 0 {
		model.memberOffset = 0
		return
	}
	if model.memberCursor < model.memberOffset {
		model.memberOffset = model.memberCursor
	}
	if model.memberCursor >= model.memberOffset+visible {
		model.memberOffset = model.memberCursor - visible + 1
	}
	model.memberOffset = max(min(model.memberOffset, len(model.memberRows)-visible), 0)
}

// refreshTimeline re-renders every message. With follow set the view
// scrolls to the newest message.
func (model *Model) refreshTimeline(follow bool) {
	if !model.ready {
		return
	}
	width := model.timeline.Width
	terms := strings.Fields(model.query)
	var blocks []string
	for _, message := range model.config.Room.Timeline(model.config.RoomID) {
		if message.Type != schema.MatrixEventTypeMessage {
			continue
		}
		var content schema.MessageContent
		if err := json.Unmarshal(message.Content, &content); err != nil {
			model.config.Logger.Debug("skipping malformed message", "event_id", message.EventID, "error", err)
			continue
		}
		body, err := model.config.Renderer.Render(content, terms, width)
		if err != nil {
			model.config.Logger.Warn("rendering message failed", "event_id", message.EventID, "error", err)
			body = ansi.Wrap(content.Body, width, "")
		}
		blocks = append(blocks, model.messageHeader(message, width)+"\n"+body)
	}
	if len(blocks) == 0 {
		blocks = append(blocks, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("No messages yet."))
	}
	model.timeline.SetContent(strings.Join(blocks, "\n\n"))
	if follow {
		model.timeline.GotoBottom()
	}
}

func (model Model) messageHeader(message messaging.Event, width int) string {
	name := message.Sender
	color := model.theme.NormalText
	if userID, err := ref.ParseUserID(message.Sender); err == nil {
		if member, ok := model.config.Members.Member(userID); ok {
			name = member.Name
			color = model.theme.PowerColor(member.PowerLevel)
		}
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(color).Render(name)
	if message.OriginServerTS > 0 {
		stamp := time.UnixMilli(message.OriginServerTS).Format("15:04")
		header += " " + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(stamp)
	}
	return ansi.Truncate(header, width, "…")
}

func (model Model) memberPaneWidth() int {
	return min(max(model.width/3, memberPaneMin), memberPaneMax)
}

func (model Model) bodyHeight() int {
	return max(model.height-roomheader.Lines-footerLines, 1)
}

// memberListHeight leaves the last body line for the invite box.
func (model Model) memberListHeight() int {
	return model.bodyHeight() - 1
}

func (model *Model) layout() {
	timelineWidth := max(model.width-model.memberPaneWidth()-1, 1)
	model.timeline.Width = timelineWidth
	model.timeline.Height = model.bodyHeight()
	model.inviteInput.Width = max(model.memberPaneWidth()-4, 1)
	model.searchInput.Width = max(model.width-4, 1)
	model.composeInput.Width = max(model.width-4, 1)
	model.scrollMembersToCursor()
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	memberWidth := model.memberPaneWidth()
	bodyHeight := model.bodyHeight()

	timeline := lipgloss.NewStyle().
		Width(model.timeline.Width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(model.timeline.View())

	dividerStyle := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	divider := strings.TrimSuffix(strings.Repeat(dividerStyle.Render("│")+"\n", bodyHeight), "\n")

	members := renderMemberPane(model.memberRows, model.theme, memberWidth, model.memberListHeight(),
		model.memberOffset, model.memberCursor, model.focus == FocusMembers, model.config.Clock.Now())
	members += "\n" + model.renderInviteBox(memberWidth)

	sections := []string{
		model.header.View(model.width),
		lipgloss.JoinHorizontal(lipgloss.Top, timeline, divider, members),
		dividerStyle.Render(strings.Repeat("─", model.width)),
		model.renderStatusLine(),
	}
	output := strings.Join(sections, "\n")

	if model.dialog != nil {
		lines, anchorX, anchorY := model.dialog.dialog.Render(model.width, model.height)
		output = tui.SpliceOverlay(output, lines, anchorX, anchorY)
	}
	return output
}

func (model Model) renderInviteBox(width int) string {
	background := lipgloss.NewStyle()
	switch {
	case model.inviting:
		label := lipgloss.NewStyle().Foreground(model.theme.InvitedText).Render("Inviting...")
		return tui.PadLine(model.spinner.View()+" "+label, width, background)
	case model.focus == FocusInvite:
		return tui.PadLine(model.inviteInput.View(), width, background)
	default:
		hint := lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("i invite  e email")
		return tui.PadLine(hint, width, background)
	}
}

func (model Model) renderStatusLine() string {
	switch model.focus {
	case FocusSearch:
		return tui.PadLine(model.searchInput.View(), model.width, lipgloss.NewStyle())
	case FocusCompose:
		return tui.PadLine(model.composeInput.View(), model.width, lipgloss.NewStyle())
	}
	if model.status != "" {
		color := model.theme.NormalText
		if model.statusLevel >= slog.LevelWarn {
			color = model.theme.ErrorForeground
		}
		text := lipgloss.NewStyle().Foreground(color).Render(" " + model.status)
		return tui.PadLine(text, model.width, lipgloss.NewStyle())
	}

	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	var parts []string
	for _, binding := range model.keys.shortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	line := " " + strings.Join(parts, "  ")
	if model.query != "" {
		line += "  [search: " + model.query + "  Esc clears]"
	}
	return tui.PadLine(style.Render(line), model.width, lipgloss.NewStyle())
}

// Focused returns the region receiving keys.
func (model Model) Focused() Focus {
	return model.focus
}

// Query returns the active search query.
func (model Model) Query() string {
	return model.query
}
