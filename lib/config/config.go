// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "BUREAU_ROOMVIEW_CONFIG"

// Config is the room view configuration.
type Config struct {
	// Homeserver is the client-server API base URL.
	Homeserver string `yaml:"homeserver"`

	// UserID is the account to sign in as.
	UserID string `yaml:"user_id"`

	// Room is the room to open, as an ID (!opaque:server) or an alias
	// (#name:server).
	Room string `yaml:"room"`

	// IdentityServer is the host used for email invites. Empty
	// disables them.
	IdentityServer string `yaml:"identity_server"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogOutput, when set, receives JSON log records while the
	// interface owns the terminal.
	LogOutput string `yaml:"log_output"`

	MemberList MemberListConfig `yaml:"member_list"`
	Render     RenderConfig     `yaml:"render"`
	Invite     InviteConfig     `yaml:"invite"`
}

// MemberListConfig configures the member list.
type MemberListConfig struct {
	// RefreshWindow is the minimum interval between rebuilds.
	// Default: 500ms
	RefreshWindow time.Duration `yaml:"refresh_window"`

	// TruncateAt limits the joined section until "show all" is
	// chosen. Negative disables truncation.
	// Default: 30
	TruncateAt int `yaml:"truncate_at"`

	// SearchMode is "substring" or "fuzzy".
	// Default: substring
	SearchMode string `yaml:"search_mode"`

	// Language is the BCP 47 tag used to sort member names.
	// Default: und
	Language string `yaml:"language"`

	// ConferenceDomain hides conference bridge users of this server.
	// Empty hides none.
	ConferenceDomain string `yaml:"conference_domain"`
}

// RenderConfig configures message rendering.
type RenderConfig struct {
	// InternalLinkPattern overrides the regular expression for links
	// that open inside the client.
	InternalLinkPattern string `yaml:"internal_link_pattern"`

	// HighlightClass is the class given to search highlights.
	// Default: mx_EventTile_searchHighlight
	HighlightClass string `yaml:"highlight_class"`

	// TimelineCapacity bounds the messages kept per room.
	// Default: 500
	TimelineCapacity int `yaml:"timeline_capacity"`
}

// InviteConfig configures invite submission.
type InviteConfig struct {
	// Rate is the number of bulk invites submitted per second. Zero
	// disables pacing.
	// Default: 5
	Rate float64 `yaml:"rate"`

	// Burst is the number of invites that may be sent at once.
	// Default: 1
	Burst int `yaml:"burst"`
}

// Default returns the configuration used before the file is applied.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		MemberList: MemberListConfig{
			RefreshWindow: 500 * time.Millisecond,
			TruncateAt:    30,
			SearchMode:    "substring",
			Language:      "und",
		},
		Render: RenderConfig{
			HighlightClass:   "mx_EventTile_searchHighlight",
			TimelineCapacity: 500,
		},
		Invite: InviteConfig{
			Rate:  5,
			Burst: 1,
		},
	}
}

// Load loads configuration from the file named by
// BUREAU_ROOMVIEW_CONFIG. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your roomview.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over [Default]. Keys absent
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.LogOutput = expandVars(c.LogOutput, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, preferring
// vars over the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Homeserver == "" {
		errs = append(errs, errors.New("homeserver is required"))
	} else if !strings.HasPrefix(c.Homeserver, "http://") && !strings.HasPrefix(c.Homeserver, "https://") {
		errs = append(errs, fmt.Errorf("homeserver %q must be an http or https URL", c.Homeserver))
	}

	if c.UserID != "" && (!strings.HasPrefix(c.UserID, "@") || !strings.Contains(c.UserID, ":")) {
		errs = append(errs, fmt.Errorf("user_id %q must look like @name:server", c.UserID))
	}

	if c.Room == "" {
		errs = append(errs, errors.New("room is required"))
	} else if !strings.HasPrefix(c.Room, "!") && !strings.HasPrefix(c.Room, "#") {
		errs = append(errs, fmt.Errorf("room %q must be a room ID (!...) or alias (#...)", c.Room))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if c.MemberList.RefreshWindow < 0 {
		errs = append(errs, errors.New("member_list.refresh_window must not be negative"))
	}
	searchModes := []string{"substring", "fuzzy"}
	if !slices.Contains(searchModes, c.MemberList.SearchMode) {
		errs = append(errs, fmt.Errorf("member_list.search_mode must be one of: %v", searchModes))
	}
	if _, err := language.Parse(c.MemberList.Language); err != nil {
		errs = append(errs, fmt.Errorf("member_list.language: %w", err))
	}

	if c.Render.InternalLinkPattern != "" {
		if _, err := regexp.Compile(c.Render.InternalLinkPattern); err != nil {
			errs = append(errs, fmt.Errorf("render.internal_link_pattern: %w", err))
		}
	}
	if c.Render.HighlightClass == "" {
		errs = append(errs, errors.New("render.highlight_class is required"))
	}
	if c.Render.TimelineCapacity <= 0 {
		errs = append(errs, errors.New("render.timeline_capacity must be positive"))
	}

	if c.Invite.Rate < 0 {
		errs = append(errs, errors.New("invite.rate must not be negative"))
	}
	if c.Invite.Rate > 0 && c.Invite.Burst < 1 {
		errs = append(errs, errors.New("invite.burst must be at least 1 when invite.rate is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", c.LogLevel)
	}
	return level, nil
}
