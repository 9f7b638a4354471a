// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package api provides the HTTP serving surface for Rolltrace: asset
// summaries, timeline projections, event detail content, galleries and the
// websocket upgrade.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/logging"
	"github.com/rolltrace/rolltrace/internal/upstream"
	"github.com/rolltrace/rolltrace/internal/view"
)

// errorResponse is the uniform error payload.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`

	// Retryable signals that the shell should offer a retry affordance
	// rather than a terminal error state.
	Retryable bool `json:"retryable,omitempty"`
}

// writeJSON encodes a payload with the proper content type.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError maps the error taxonomy onto HTTP responses:
// configuration errors and not-found get dedicated states; identity and
// generic upstream failures surface as bad gateway with a retry affordance;
// a superseded load is a conflict the shell resolves by following the newer
// navigation.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, config.ErrMissingCredentials):
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "configuration",
			Message: err.Error(),
		})

	case errors.Is(err, upstream.ErrAssetNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "The requested roller does not exist.",
		})

	case upstream.IsAuthError(err):
		logging.Ctx(r.Context()).Error().Err(err).Msg("upstream authentication failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:     "authentication",
			Message:   "Could not authenticate against the asset-management service.",
			Retryable: true,
		})

	case errors.Is(err, view.ErrSuperseded):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   "superseded",
			Message: "A newer asset was requested; this result was discarded.",
		})

	default:
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			logging.Ctx(r.Context()).Error().Err(err).
				Int("status", apiErr.StatusCode).Str("operation", apiErr.Operation).
				Msg("upstream API error")
			writeJSON(w, http.StatusBadGateway, errorResponse{
				Error:     "upstream",
				Message:   err.Error(),
				Retryable: true,
			})
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     "internal",
			Message:   err.Error(),
			Retryable: true,
		})
	}
}
