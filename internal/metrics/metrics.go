// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package metrics registers the Prometheus instrumentation for Rolltrace:
// API endpoint latency and throughput, upstream asset-API calls, token cache
// behavior, and websocket connections.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolltrace_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rolltrace_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rolltrace_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Upstream asset-management API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolltrace_upstream_requests_total",
			Help: "Total number of upstream asset API requests",
		},
		[]string{"operation", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rolltrace_upstream_request_duration_seconds",
			Help:    "Upstream asset API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolltrace_upstream_errors_total",
			Help: "Total number of upstream asset API errors",
		},
		[]string{"operation", "error_type"},
	)

	// Token cache metrics
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolltrace_token_refreshes_total",
			Help: "Total number of identity endpoint token refreshes",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	TokenCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rolltrace_token_cache_hits_total",
			Help: "Total number of token requests served from the cache",
		},
	)

	TokenSingleFlightShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rolltrace_token_singleflight_shared_total",
			Help: "Total number of token requests coalesced into an in-flight refresh",
		},
	)

	// WebSocket metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rolltrace_websocket_clients",
			Help: "Current number of connected websocket clients",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records one completed upstream call.
func RecordUpstreamRequest(operation string, statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordUpstreamError records one upstream failure by error type.
func RecordUpstreamError(operation, errorType string) {
	UpstreamErrors.WithLabelValues(operation, errorType).Inc()
}
