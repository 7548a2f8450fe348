// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/roomview/lib/config"
	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/secret"
	"github.com/bureau-foundation/roomview/messaging"
)

// tokenEnvironmentVariable holds an access token to use instead of a
// password login.
const tokenEnvironmentVariable = "BUREAU_ROOMVIEW_TOKEN"

// openSession signs in with, in order: the token file, the token
// environment variable, or a password prompted on the terminal. The
// session is checked with WhoAmI; the response reports guest access.
func openSession(ctx context.Context, client *messaging.Client, cfg *config.Config, tokenFile string) (*messaging.DirectSession, *messaging.WhoAmIResponse, error) {
	var userID ref.UserID
	if cfg.UserID != "" {
		parsed, err := ref.ParseUserID(cfg.UserID)
		if err != nil {
			return nil, nil, validation("user_id: %w", err)
		}
		userID = parsed
	}

	session, err := signIn(ctx, client, cfg, userID, tokenFile)
	if err != nil {
		return nil, nil, err
	}

	whoami, err := session.WhoAmI(ctx)
	if err != nil {
		session.Close()
		if messaging.IsMatrixError(err, messaging.ErrCodeUnknownToken) {
			return nil, nil, forbidden("access token rejected: %w", err).
				WithHint("The token may have expired. Unset " + tokenEnvironmentVariable + " to sign in with a password.")
		}
		return nil, nil, transient("checking session: %w", err)
	}
	if !userID.IsZero() && whoami.UserID != userID {
		session.Close()
		return nil, nil, validation("access token belongs to %s, not %s", whoami.UserID, userID)
	}
	return session, whoami, nil
}

func signIn(ctx context.Context, client *messaging.Client, cfg *config.Config, userID ref.UserID, tokenFile string) (*messaging.DirectSession, error) {
	var token *secret.Buffer
	var err error
	switch {
	case tokenFile != "":
		token, err = secret.ReadFile(tokenFile)
		if err != nil {
			return nil, validation("%w", err)
		}
	case os.Getenv(tokenEnvironmentVariable) != "":
		token, err = secret.NewFromString(os.Getenv(tokenEnvironmentVariable))
		if err != nil {
			return nil, fmt.Errorf("protecting access token: %w", err)
		}
	}
	if token != nil {
		session, err := client.SessionFromToken(userID, token)
		if err != nil {
			token.Close()
			return nil, err
		}
		return session, nil
	}

	if userID.IsZero() {
		return nil, validation("no access token and no user to sign in as").
			WithHint("Set " + tokenEnvironmentVariable + ", pass --token-file, or pass --user to sign in with a password.")
	}
	password, err := secret.Prompt(int(os.Stdin.Fd()), "Password for "+userID.String()+": ")
	if err != nil {
		return nil, validation("%w", err)
	}
	defer password.Close()

	session, err := client.Login(ctx, userID.String(), password)
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeForbidden) {
			return nil, forbidden("login failed: %w", err)
		}
		var matrixErr *messaging.MatrixError
		if errors.As(err, &matrixErr) {
			return nil, err
		}
		return nil, transient("login failed: %w", err)
	}
	return session, nil
}
