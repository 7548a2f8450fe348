// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/roomview/lib/ref"
	"github.com/bureau-foundation/roomview/lib/secret"
)

// maxResponseSize bounds JSON response reads. A full initial /sync for
// a large room is a few megabytes; anything past this is a broken
// server.
const maxResponseSize int64 = 64 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL of the homeserver (e.g., "https://matrix.example.org").
	HomeserverURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// DeviceDisplayName is sent on password login. Defaults to "bureau-roomview".
	DeviceDisplayName string
}

// Client is an unauthenticated Matrix client. It holds the homeserver
// URL and HTTP transport, shared by every Session it creates.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	logger            *slog.Logger
	deviceDisplayName string
}

// NewClient creates a new unauthenticated Matrix client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, fmt.Errorf("messaging: HomeserverURL is required")
	}
	// Request URLs are built by concatenation onto the trimmed string so
	// pre-escaped path segments are never re-encoded.
	parsed, err := url.Parse(config.HomeserverURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: HomeserverURL %q must use http or https", config.HomeserverURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deviceDisplayName := config.DeviceDisplayName
	if deviceDisplayName == "" {
		deviceDisplayName = "bureau-roomview"
	}

	return &Client{
		baseURL:           strings.TrimRight(config.HomeserverURL, "/"),
		httpClient:        httpClient,
		logger:            logger,
		deviceDisplayName: deviceDisplayName,
	}, nil
}

// CloseIdleConnections drops pooled connections. The syncer calls it
// after a failed long-poll so the next attempt opens a fresh socket.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Login authenticates with a user ID or localpart and password. The
// password Buffer is read but not closed.
func (c *Client) Login(ctx context.Context, user string, password *secret.Buffer) (*DirectSession, error) {
	if user == "" {
		return nil, fmt.Errorf("messaging: user is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("messaging: password is required for login")
	}

	request := LoginRequest{
		Type: "m.login.password",
		Identifier: LoginIdentifier{
			Type: "m.id.user",
			User: user,
		},
		Password:                 password.String(),
		InitialDeviceDisplayName: c.deviceDisplayName,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/_matrix/client/v3/login", nil, request)
	if err != nil {
		return nil, fmt.Errorf("messaging: login failed: %w", err)
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse login response: %w", err)
	}
	c.logger.Info("logged in to matrix",
		"user_id", auth.UserID,
		"device_id", auth.DeviceID,
	)

	tokenBuffer, err := secret.NewFromString(auth.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("messaging: protecting access token: %w", err)
	}
	return &DirectSession{
		client:      c,
		accessToken: tokenBuffer,
		userID:      auth.UserID,
		deviceID:    auth.DeviceID,
	}, nil
}

// SessionFromToken wraps an existing access token. The token is not
// validated here; call WhoAmI to check it. The Buffer is owned by the
// returned session and closed by its Close.
func (c *Client) SessionFromToken(userID ref.UserID, accessToken *secret.Buffer) (*DirectSession, error) {
	if accessToken == nil || accessToken.Len() == 0 {
		return nil, fmt.Errorf("messaging: access token is required")
	}
	return &DirectSession{
		client:      c,
		accessToken: accessToken,
		userID:      userID,
	}, nil
}

// doRequest performs a JSON request against the homeserver and returns
// the response body. Non-2xx responses are returned as *MatrixError.
// accessToken may be nil for unauthenticated endpoints.
func (c *Client) doRequest(ctx context.Context, method, path string, accessToken *secret.Buffer, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && len(query[0]) > 0 {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("messaging: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != nil {
		request.Header.Set("Authorization", "Bearer "+accessToken.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("messaging: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to read response body: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var matrixErr MatrixError
	if jsonErr := json.Unmarshal(responseBody, &matrixErr); jsonErr != nil || matrixErr.Code == "" {
		return nil, fmt.Errorf("messaging: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	matrixErr.StatusCode = response.StatusCode
	return nil, &matrixErr
}
