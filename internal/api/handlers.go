// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/filter"
	"github.com/rolltrace/rolltrace/internal/models"
	"github.com/rolltrace/rolltrace/internal/timeline"
	"github.com/rolltrace/rolltrace/internal/view"
	"github.com/rolltrace/rolltrace/internal/websocket"
)

// Handler serves the Rolltrace HTTP API.
type Handler struct {
	cfg       *config.Config
	loader    *view.Loader
	projector *timeline.Projector
	hub       *websocket.Hub
	startTime time.Time
}

// NewHandler creates a handler backed by the given loader, projector and hub.
func NewHandler(cfg *config.Config, loader *view.Loader, projector *timeline.Projector, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		loader:    loader,
		projector: projector,
		hub:       hub,
		startTime: time.Now(),
	}
}

// sessionHeader identifies one shell session (one browser tab). Navigating
// within a session supersedes that session's own in-flight load; other
// clients are unaffected. Absent header means no supersede tracking.
const sessionHeader = "X-Session-ID"

func sessionID(r *http.Request) string {
	return r.Header.Get(sessionHeader)
}

// healthResponse is the health endpoint payload.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Clients       int    `json:"clients,omitempty"`
}

// Health reports service liveness and basic runtime information.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Clients:       h.hub.ClientCount(),
	})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. The service is ready once credentials
// are configured; upstream reachability is probed lazily on first use.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.cfg.Validate(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Asset serves the asset summary without its raw event list.
func (h *Handler) Asset(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	assetView, err := h.loader.LoadSession(r.Context(), sessionID(r), assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	asset := assetView.Asset
	visible := 0
	for _, event := range assetView.Events() {
		if event.Visible() {
			visible++
		}
	}

	writeJSON(w, http.StatusOK, models.AssetSummary{
		ID:              asset.ID,
		Name:            asset.Name,
		Description:     asset.Description,
		Status:          asset.Status,
		Diameter:        asset.Diameter,
		CoverLength:     asset.CoverLength,
		TotalLength:     asset.TotalLength,
		CurrentPosition: asset.CurrentPosition,
		EventCount:      len(assetView.Events()),
		VisibleEvents:   visible,
	})
}

// Timeline serves the projected timeline view.
//
// Query parameters:
//
//	mode   "direct" (default) or "compressed"
//	types  comma-separated main event types; absent means the default
//	       selection (all main types except ENGRAVED)
//	years  comma-separated years; absent or empty means all years
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	state := filter.New()
	if raw := r.URL.Query().Get("types"); raw != "" {
		state.SetTypes(parseEventTypes(raw))
	}
	if raw := r.URL.Query().Get("years"); raw != "" {
		years, err := parseYears(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "bad_request",
				Message: "years must be a comma-separated list of integers",
			})
			return
		}
		state.SetYears(years)
	}

	assetView, err := h.loader.LoadSession(r.Context(), sessionID(r), assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	visible := state.VisibleEvents(assetView.Events())
	projection := h.projector.Project(assetID, visible, r.URL.Query().Get("mode"), state.SelectedYears(), time.Now())

	writeJSON(w, http.StatusOK, projection)
}

// EventDetail serves the assembled detail content for one event.
func (h *Handler) EventDetail(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")
	eventID := chi.URLParam(r, "eventID")

	assetView, err := h.loader.LoadSession(r.Context(), sessionID(r), assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Hidden events are never rendered; a hidden match falls through to the
	// not-found response like an unknown id.
	for _, event := range assetView.Events() {
		if event.ID != eventID || !event.Visible() {
			continue
		}
		detail := timeline.BuildDetail(event, assetView.Galleries[event.ID], timeline.DetailOptions{
			MaxInlineThumbnails: h.cfg.Timeline.MaxInlineThumbnails,
			ServiceAccount:      h.cfg.Upstream.ServiceAccount,
		})
		writeJSON(w, http.StatusOK, detail)
		return
	}

	writeJSON(w, http.StatusNotFound, errorResponse{
		Error:   "not_found",
		Message: "The requested event does not exist on this roller.",
	})
}

// pictureGalleries is the pictures endpoint payload.
type pictureGalleries struct {
	AssetID   string                      `json:"assetId"`
	Galleries map[string][]models.Picture `json:"galleries"`
}

// Pictures serves all picture galleries for the asset, keyed by event id.
func (h *Handler) Pictures(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	assetView, err := h.loader.LoadSession(r.Context(), sessionID(r), assetID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	galleries := assetView.Galleries
	if galleries == nil {
		galleries = map[string][]models.Picture{}
	}
	writeJSON(w, http.StatusOK, pictureGalleries{AssetID: assetID, Galleries: galleries})
}

// Download redirects to a short-lived signed URL for one event document. The
// URL is resolved fresh per request because signed URLs expire.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")
	eventID := chi.URLParam(r, "eventID")
	name := chi.URLParam(r, "name")

	url, err := h.loader.Client().GetDownloadURL(r.Context(), assetID, eventID, name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Refresh drops the cached view and reloads the asset from upstream.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "assetID")

	if _, err := h.loader.Refresh(r.Context(), assetID); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed", "assetId": assetID})
}

// WebSocket upgrades the connection and attaches it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(h.hub, w, r)
}

// parseEventTypes parses a comma-separated type list, uppercasing each entry.
// Unknown types are passed through and ignored by the filter.
func parseEventTypes(raw string) []models.EventType {
	parts := strings.Split(raw, ",")
	types := make([]models.EventType, 0, len(parts))
	for _, part := range parts {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		types = append(types, models.EventType(part))
	}
	return types
}

// parseYears parses a comma-separated year list.
func parseYears(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}
