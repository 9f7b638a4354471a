// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/logging"
	"github.com/rolltrace/rolltrace/internal/metrics"
	"github.com/rolltrace/rolltrace/internal/models"
)

// tokenKey is the single singleflight key: there is exactly one upstream
// identity, so all refreshes coalesce onto one in-flight exchange.
const tokenKey = "token"

// TokenSource caches the OAuth2 bearer token for the asset-management API.
//
// A cached token is returned without a network call while it remains valid
// (expiry minus the configured buffer). When a refresh is needed, concurrent
// callers coalesce onto one identity-endpoint request and all receive the
// same token or error. A failed refresh leaves no in-flight state behind, so
// the next call retries cleanly.
type TokenSource struct {
	identityURL string
	clientID    string
	username    string
	password    string
	buffer      time.Duration

	httpClient *http.Client
	group      singleflight.Group

	// now is replaceable for tests.
	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource creates a token source from the upstream configuration.
func NewTokenSource(cfg config.UpstreamConfig) *TokenSource {
	buffer := cfg.TokenExpiryBuffer
	if buffer <= 0 {
		buffer = 10 * time.Second
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TokenSource{
		identityURL: cfg.IdentityURL,
		clientID:    cfg.ClientID,
		username:    cfg.Username,
		password:    cfg.Password,
		buffer:      buffer,
		httpClient:  &http.Client{Timeout: timeout},
		now:         time.Now,
	}
}

// Token returns a valid bearer token, refreshing it when needed.
//
// Missing credentials are a configuration error reported before any network
// attempt.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s.username == "" || s.password == "" || s.clientID == "" {
		return "", config.ErrMissingCredentials
	}

	if token, ok := s.cached(); ok {
		metrics.TokenCacheHits.Inc()
		return token, nil
	}

	result, err, shared := s.group.Do(tokenKey, func() (interface{}, error) {
		// A refresh may have completed between the cache check and
		// entering the group; re-check before hitting the network.
		if token, ok := s.cached(); ok {
			return token, nil
		}
		return s.refresh(ctx)
	})
	if shared {
		metrics.TokenSingleFlightShared.Inc()
	}
	if err != nil {
		return "", err
	}

	token, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token refresh result type %T", result)
	}
	return token, nil
}

// Invalidate drops the cached token so the next call performs a refresh.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiry = time.Time{}
}

// cached returns the token if it is still valid within the expiry buffer.
func (s *TokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && s.now().Before(s.expiry.Add(-s.buffer)) {
		return s.token, true
	}
	return "", false
}

// refresh performs the password-grant exchange against the identity endpoint
// and caches the result.
func (s *TokenSource) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", s.clientID)
	form.Set("username", s.username)
	form.Set("password", s.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.identityURL, strings.NewReader(form.Encode()))
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var token models.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("identity endpoint returned an empty access token")
	}

	expiry := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)

	s.mu.Lock()
	s.token = token.AccessToken
	s.expiry = expiry
	s.mu.Unlock()

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	logging.Debug().Time("expiry", expiry).Msg("token refreshed")

	return token.AccessToken, nil
}

// maxErrorBodySize limits the response body read for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting, bounded to
// avoid unbounded allocation on large error responses.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
