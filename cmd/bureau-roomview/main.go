// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-roomview is a terminal client for one Matrix room: its
// timeline, its member list with presence and power levels, and
// inviting people by user ID or email address.
//
// The room, homeserver and account come from a YAML config file
// (--config or $BUREAU_ROOMVIEW_CONFIG) and flags. The access token is
// read from $BUREAU_ROOMVIEW_TOKEN or --token-file; without one the
// password for --user is prompted on the terminal.
//
// While the interface owns the terminal, warnings and errors appear in
// the status bar. --log-output additionally writes every record as
// JSON to a file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/roomview/lib/config"
	"github.com/bureau-foundation/roomview/lib/htmlbody"
	"github.com/bureau-foundation/roomview/lib/invite"
	"github.com/bureau-foundation/roomview/lib/memberlist"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/roomstate"
	"github.com/bureau-foundation/roomview/lib/roomui"
	"github.com/bureau-foundation/roomview/lib/roster"
	"github.com/bureau-foundation/roomview/lib/tui"
	"github.com/bureau-foundation/roomview/lib/version"
	"github.com/bureau-foundation/roomview/messaging"
)

// syncTimelineLimit caps the messages per /sync response.
const syncTimelineLimit = 50

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

func run(args []string) error {
	opts := newOptions()
	if err := opts.parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(opts.flagSet)
			return nil
		}
		var command *commandError
		if errors.As(err, &command) {
			return err
		}
		return validation("%w", err)
	}
	if opts.help {
		printHelp(opts.flagSet)
		return nil
	}
	if opts.version {
		version.Print("bureau-roomview")
		return nil
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return validation("%w", err)
	}
	logger := newCommandLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Homeserver,
		Logger:        logger,
	})
	if err != nil {
		return validation("%w", err)
	}

	session, whoami, err := openSession(ctx, client, cfg, opts.tokenFile)
	if err != nil {
		return err
	}
	defer session.Close()

	roomID, err := messaging.ResolveRoom(ctx, session, cfg.Room)
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return notFound("room %s not found: %w", cfg.Room, err)
		}
		return validation("resolving room %s: %w", cfg.Room, err)
	}

	stateEvents, err := session.GetRoomState(ctx, roomID)
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeForbidden) {
			return forbidden("reading state of %s: %w", roomID, err).
				WithHint("Join the room before opening it.")
		}
		return transient("reading state of %s: %w", roomID, err)
	}
	logger.Debug("loaded room state",
		"room_id", roomID,
		"events", len(stateEvents),
		"user_id", whoami.UserID,
		"guest", whoami.IsGuest,
	)

	return runViewer(ctx, viewerParams{
		config:      cfg,
		level:       level,
		session:     session,
		whoami:      whoami,
		roomID:      roomID,
		stateEvents: stateEvents,
	})
}

type viewerParams struct {
	config      *config.Config
	level       slog.Level
	session     *messaging.DirectSession
	whoami      *messaging.WhoAmIResponse
	roomID      ref.RoomID
	stateEvents []messaging.Event
}

// runViewer wires the store, syncer, member list and invite workflow
// to the interface and runs it until the user quits. Background
// logging goes to the status bar, and to the --log-output file when
// one is configured, since stderr would corrupt the alt screen.
func runViewer(ctx context.Context, params viewerParams) error {
	cfg := params.config
	theme := tui.DefaultTheme
	bridge := roomui.NewBridge(theme)

	var handler slog.Handler = roomui.NewLogHandler(bridge, slog.LevelWarn)
	if cfg.LogOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(cfg.LogOutput, params.level)
		if err != nil {
			return validation("cannot open log file %s: %w", cfg.LogOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{handler, fileHandler}
	}
	logger := slog.New(handler)

	viewerCtx, cancelViewer := context.WithCancel(ctx)
	defer cancelViewer()

	store := roomstate.New(roomstate.Config{
		Logger:           logger,
		TimelineCapacity: cfg.Render.TimelineCapacity,
	})
	store.LoadRoom(params.roomID, params.stateEvents)

	members, err := newMemberList(store, params.roomID, cfg.MemberList, bridge, logger)
	if err != nil {
		return err
	}
	members.Mount()
	defer members.Close()

	subscription := store.Subscribe(func(storeEvent roomstate.Event) {
		if storeEvent.RoomID != params.roomID {
			return
		}
		switch storeEvent.Kind {
		case roomstate.Timeline, roomstate.StateEvent:
			bridge.RoomChanged()
		}
	})
	defer subscription.Close()

	syncer, err := roomstate.NewSyncer(roomstate.SyncerConfig{
		Session:       params.session,
		Store:         store,
		RoomID:        params.roomID,
		TimelineLimit: syncTimelineLimit,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		if err := syncer.Run(viewerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("room updates stopped", "error", err)
		}
	}()

	workflow, err := newWorkflow(params, store, bridge, logger)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg.Render)
	if err != nil {
		return err
	}

	model := roomui.NewModel(roomui.Config{
		Context:  viewerCtx,
		RoomID:   params.roomID,
		Room:     store,
		Members:  members,
		Invites:  workflow,
		Sender:   params.session,
		Theme:    theme,
		Renderer: renderer,
		Logger:   logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.SetProgram(program)

	_, err = program.Run()

	bridge.SetProgram(nil)
	cancelViewer()
	<-syncDone

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newMemberList(store *roomstate.Store, roomID ref.RoomID, cfg config.MemberListConfig, bridge *roomui.Bridge, logger *slog.Logger) (*memberlist.MemberList, error) {
	searchMode, err := roster.ParseSearchMode(cfg.SearchMode)
	if err != nil {
		return nil, validation("%w", err)
	}
	tag, err := language.Parse(cfg.Language)
	if err != nil {
		return nil, validation("member_list.language: %w", err)
	}
	var conference roster.ConferenceFilter
	if cfg.ConferenceDomain != "" {
		conference = roster.ConferenceBridge(cfg.ConferenceDomain)
	}
	return memberlist.New(store, roomID, memberlist.Config{
		RefreshWindow: cfg.RefreshWindow,
		TruncateAt:    cfg.TruncateAt,
		SearchMode:    searchMode,
		Language:      tag,
		Conference:    conference,
		OnChange:      bridge.MembersChanged,
		Logger:        logger,
	}), nil
}

func newWorkflow(params viewerParams, store *roomstate.Store, bridge *roomui.Bridge, logger *slog.Logger) (*invite.Workflow, error) {
	var limiter *rate.Limiter
	if params.config.Invite.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(params.config.Invite.Rate), params.config.Invite.Burst)
	}
	return invite.NewWorkflow(invite.Config{
		Inviter: invite.MatrixInviter{
			Session:        params.session,
			IdentityServer: params.config.IdentityServer,
		},
		State:      store,
		Dialogs:    bridge,
		Session:    &invite.Session{},
		Guest:      params.whoami.IsGuest,
		Permission: invite.MatrixPermission{Session: params.session, UserID: params.whoami.UserID},
		Limiter:    limiter,
		OnInviting: bridge.Inviting,
		Logger:     logger,
	})
}

func newRenderer(cfg config.RenderConfig) (roomui.BodyRenderer, error) {
	policy := htmlbody.DefaultPolicy()
	if cfg.InternalLinkPattern != "" {
		var err error
		policy, err = policy.WithInternalLink(cfg.InternalLinkPattern)
		if err != nil {
			return roomui.BodyRenderer{}, validation("render.internal_link_pattern: %w", err)
		}
	}
	return roomui.BodyRenderer{
		Options: htmlbody.BodyOptions{
			Policy:         policy,
			HighlightClass: cfg.HighlightClass,
		},
	}, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bureau-roomview: terminal view of one Matrix room.

Shows the room timeline and member list, and invites people by user
ID or email address. Search (/) filters members and highlights
matching text in messages.

Usage:
  bureau-roomview [flags]

Examples:
  # Open the room named in the config file
  BUREAU_ROOMVIEW_CONFIG=~/roomview.yaml bureau-roomview

  # Open a room by alias, signing in with a password
  bureau-roomview --homeserver https://matrix.example.org \
    --user @alice:example.org --room '#design:example.org'

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
