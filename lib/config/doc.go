// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the room
// view.
//
// Configuration is loaded from a single file named either by the
// BUREAU_ROOMVIEW_CONFIG environment variable (via [Load]) or by a
// --config flag (via [LoadFile]). There is no ~/.config discovery and
// no automatic file search. Command-line flags are applied by the
// caller on top of the loaded values.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- the master struct with MemberList, Render and Invite
//   - [Default] -- returns a Config with every default applied
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other Bureau packages.
package config
