// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging is a thin client for the Matrix client-server API,
// covering the calls a room viewer makes: login, whoami, /sync with
// presence, room state and member queries, invites, and messages.
//
// [Client] is unauthenticated and holds the homeserver URL and HTTP
// transport. [Client.Login] and [Client.SessionFromToken] produce a
// [DirectSession], which keeps the access token in a [secret.Buffer].
// Consumers depend on the [Session] interface so tests can substitute
// an httptest homeserver or an in-memory fake.
//
// Homeserver failures are returned as *[MatrixError]; use
// [IsMatrixError] to test for a specific errcode such as
// [ErrCodeForbidden].
package messaging
