// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/roomview/lib/config"
)

// options holds the command line. Flags set explicitly override the
// config file.
type options struct {
	configPath string
	tokenFile  string
	help       bool
	version    bool

	homeserver     string
	userID         string
	room           string
	identityServer string
	logLevel       string
	logOutput      string
	searchMode     string
	truncateAt     int

	flagSet *pflag.FlagSet
}

func newOptions() *options {
	opts := &options{}
	flagSet := pflag.NewFlagSet("bureau-roomview", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.tokenFile, "token-file", "", "read the access token from this file instead of $"+tokenEnvironmentVariable)
	flagSet.StringVar(&opts.homeserver, "homeserver", "", "homeserver base URL")
	flagSet.StringVar(&opts.userID, "user", "", "user ID to sign in as (@name:server)")
	flagSet.StringVar(&opts.room, "room", "", "room ID or alias to open")
	flagSet.StringVar(&opts.identityServer, "identity-server", "", "identity server for email invites")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.StringVar(&opts.searchMode, "search-mode", "", "member search: substring or fuzzy")
	flagSet.IntVar(&opts.truncateAt, "truncate-at", 0, "joined members shown before \"and N others\" (-1 shows all)")
	flagSet.BoolVar(&opts.version, "version", false, "print version information")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	opts.flagSet = flagSet
	return opts
}

func (opts *options) parse(args []string) error {
	if err := opts.flagSet.Parse(args); err != nil {
		return err
	}
	if rest := opts.flagSet.Args(); len(rest) > 0 {
		return validation("unexpected argument: %s", rest[0])
	}
	return nil
}

// loadConfig reads the config file named by --config or the
// environment, falling back to defaults when neither is set, then
// applies the flags and validates the result.
func (opts *options) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, validation("%w", err).
			WithHint("Check the file path and YAML syntax; unknown keys are rejected.")
	}

	changed := opts.flagSet.Changed
	if changed("homeserver") {
		cfg.Homeserver = opts.homeserver
	}
	if changed("user") {
		cfg.UserID = opts.userID
	}
	if changed("room") {
		cfg.Room = opts.room
	}
	if changed("identity-server") {
		cfg.IdentityServer = opts.identityServer
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("log-output") {
		cfg.LogOutput = opts.logOutput
	}
	if changed("search-mode") {
		cfg.MemberList.SearchMode = opts.searchMode
	}
	if changed("truncate-at") {
		cfg.MemberList.TruncateAt = opts.truncateAt
	}

	if err := cfg.Validate(); err != nil {
		return nil, validation("invalid configuration:\n%w", err).
			WithHint("Set the value in the config file or pass the matching flag, for example --homeserver or --room.")
	}
	return cfg, nil
}
