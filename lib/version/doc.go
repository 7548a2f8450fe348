// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the room
// view binary.
//
// Three package-level variables are injected at build time via
// -ldflags -X: [GitCommit], [GitDirty] and [BuildTime]. [Version] is
// set manually for releases. They default to "unknown" and
// "0.1.0-dev" in development builds and test runs.
package version
