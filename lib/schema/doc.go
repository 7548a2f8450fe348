// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the Matrix event types and content structures
// the room viewer reads and writes.
//
// Event type constants (MatrixEventType*) are the standard Matrix
// event type strings. Content structs decode only the fields the view
// layer consumes: [PowerLevels] for member ranking and
// [ThirdPartyInviteContent] for pending email invites. Member and
// presence content is decoded with mautrix's event package in
// lib/roomstate.
//
// This package depends only on lib/ref.
package schema
