// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package main is the entry point for the Rolltrace server.
//
// Rolltrace serves maintenance-event timelines for industrial rollers. It
// authenticates against the asset-management identity provider (OAuth2
// password grant), loads roller assets with their event histories and picture
// galleries, and serves projected timeline views to the browser shell.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, file, environment)
//  2. Token source: cached OAuth2 access token with single-flight refresh
//  3. Upstream client: asset-management API with tenant header
//  4. View loader: concurrent asset+pictures composition with a TTL cache
//  5. WebSocket hub: refresh notifications to open asset pages
//  6. HTTP server: REST API plus Prometheus metrics
//
// Shutdown is graceful on SIGINT and SIGTERM: the supervision tree stops the
// hub and drains in-flight HTTP requests within the shutdown timeout.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rolltrace/rolltrace/internal/api"
	"github.com/rolltrace/rolltrace/internal/cache"
	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/logging"
	"github.com/rolltrace/rolltrace/internal/supervisor"
	"github.com/rolltrace/rolltrace/internal/supervisor/services"
	"github.com/rolltrace/rolltrace/internal/timeline"
	"github.com/rolltrace/rolltrace/internal/upstream"
	"github.com/rolltrace/rolltrace/internal/view"
	ws "github.com/rolltrace/rolltrace/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors log through the default logger; configured logging
		// is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("api_base_url", cfg.Upstream.APIBaseURL).
		Str("tenant", cfg.Upstream.TenantID).
		Str("addr", cfg.Server.Addr).
		Msg("Starting Rolltrace")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := upstream.NewTokenSource(cfg.Upstream)
	client := upstream.NewClient(cfg.Upstream, tokens)

	viewCache := cache.New(cfg.Server.CacheTTL)
	defer viewCache.Stop()

	hub := ws.NewHub()
	loader := view.NewLoader(client, viewCache, hub)
	projector := timeline.NewProjector(cfg.Timeline)

	handler := api.NewHandler(cfg, loader, projector, hub)
	router := api.NewRouter(cfg.Server, handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Upstream.RequestTimeout,
		WriteTimeout: cfg.Upstream.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Rolltrace stopped gracefully")
}
