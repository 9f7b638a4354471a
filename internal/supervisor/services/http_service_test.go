// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer implements HTTPServer with controllable behavior.
type mockServer struct {
	listenErr   error
	shutdownErr error
	stopped     chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{stopped: make(chan struct{})}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopped
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	close(m.stopped)
	return m.shutdownErr
}

func TestServeGracefulShutdown(t *testing.T) {
	server := newMockServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}

func TestServeStartupFailure(t *testing.T) {
	server := newMockServer()
	server.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected a startup error")
	}
}

func TestServeShutdownFailure(t *testing.T) {
	server := newMockServer()
	server.shutdownErr = errors.New("connections still open")
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, context.Canceled) {
			t.Fatalf("expected a shutdown error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
