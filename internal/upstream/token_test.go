// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rolltrace/rolltrace/internal/config"
)

func testUpstreamConfig(identityURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		IdentityURL:       identityURL,
		APIBaseURL:        "https://api.example.com",
		ClientID:          "rolltrace-client",
		Username:          "operator",
		Password:          "secret",
		TenantID:          "tenant-1",
		RequestTimeout:    5 * time.Second,
		TokenExpiryBuffer: 10 * time.Second,
	}
}

func TestTokenMissingCredentials(t *testing.T) {
	cfg := testUpstreamConfig("https://identity.example.com/token")
	cfg.Password = ""
	source := NewTokenSource(cfg)

	_, err := source.Token(context.Background())

	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestTokenPasswordGrantRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "method", r.Method, http.MethodPost)
		checkStringEqual(t, "content type", r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		checkNoError(t, r.ParseForm())
		checkStringEqual(t, "grant_type", r.PostForm.Get("grant_type"), "password")
		checkStringEqual(t, "client_id", r.PostForm.Get("client_id"), "rolltrace-client")
		checkStringEqual(t, "username", r.PostForm.Get("username"), "operator")
		checkStringEqual(t, "password", r.PostForm.Get("password"), "secret")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	token, err := source.Token(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "token", token, "tok-1")
}

func TestTokenCachedWithinBuffer(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	for i := 0; i < 3; i++ {
		token, err := source.Token(context.Background())
		checkNoError(t, err)
		checkStringEqual(t, "token", token, "tok-1")
	}

	checkIntEqual(t, "identity calls", int(atomic.LoadInt32(&calls)), 1)
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))
	current := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	source.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	token, err := source.Token(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "first token", token, "tok-1")

	// 295s elapsed: inside the 10s expiry buffer of a 300s token, so the
	// token must be refreshed even though it is not yet expired.
	mu.Lock()
	current = current.Add(295 * time.Second)
	mu.Unlock()

	token, err = source.Token(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "second token", token, "tok-2")
	checkIntEqual(t, "identity calls", int(atomic.LoadInt32(&calls)), 2)
}

func TestTokenConcurrentCallersCoalesce(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = source.Token(context.Background())
		}(i)
	}

	// Give the callers time to pile onto the in-flight refresh, then let
	// the identity endpoint answer.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		checkNoError(t, errs[i])
		checkStringEqual(t, "token", tokens[i], "tok-1")
	}
	checkIntEqual(t, "identity calls", int(atomic.LoadInt32(&calls)), 1)
}

func TestTokenRefreshFailureIsRetriable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	_, err := source.Token(context.Background())
	checkError(t, err)
	checkTrue(t, "failure is an auth error", IsAuthError(err))

	// The failed exchange must leave no in-flight state behind; the next
	// call retries cleanly.
	token, err := source.Token(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "token after retry", token, "tok-2")
}

func TestTokenInvalidate(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	_, err := source.Token(context.Background())
	checkNoError(t, err)
	source.Invalidate()
	_, err = source.Token(context.Background())
	checkNoError(t, err)

	checkIntEqual(t, "identity calls", int(atomic.LoadInt32(&calls)), 2)
}

func TestTokenEmptyAccessTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"","expires_in":300}`))
	}))
	defer server.Close()

	source := NewTokenSource(testUpstreamConfig(server.URL))

	_, err := source.Token(context.Background())
	checkError(t, err)
}
