// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/middleware"
)

// NewRouter assembles the chi router with the full middleware stack and all
// API routes.
func NewRouter(cfg config.ServerConfig, handler *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", sessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(middleware.PrometheusMetrics)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Get("/health/live", handler.HealthLive)
		r.Get("/health/ready", handler.HealthReady)

		r.Get("/ws", handler.WebSocket)

		r.Route("/assets/{assetID}", func(r chi.Router) {
			r.Get("/", handler.Asset)
			r.Get("/timeline", handler.Timeline)
			r.Get("/pictures", handler.Pictures)
			r.Get("/events/{eventID}", handler.EventDetail)
			r.Get("/events/{eventID}/documents/{name}/download", handler.Download)
			r.Post("/refresh", handler.Refresh)
		})
	})

	return r
}
