// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package view composes the data an asset page needs: the asset with its
// events, and the picture galleries keyed by event, loaded concurrently from
// the upstream API with cancellation on supersede.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rolltrace/rolltrace/internal/cache"
	"github.com/rolltrace/rolltrace/internal/logging"
	"github.com/rolltrace/rolltrace/internal/models"
	"github.com/rolltrace/rolltrace/internal/upstream"
)

// ErrSuperseded indicates a load completed after a newer asset was requested;
// its result was discarded rather than allowed to overwrite newer state.
var ErrSuperseded = errors.New("asset load superseded by a newer request")

// documentFetchLimit bounds the concurrent document listings during the
// fan-out for OTHER-type events.
const documentFetchLimit = 8

// Notifier receives a notice whenever a fresh asset view commits, so open
// pages can re-fetch. Implemented by the websocket hub.
type Notifier interface {
	NotifyAssetRefreshed(assetID string)
}

// AssetView is the composed result of one load: the asset plus all picture
// galleries keyed by event id. Galleries for OTHER-type events are built from
// the documents endpoint and converted to the Picture shape.
type AssetView struct {
	Asset     *models.Asset
	Galleries map[string][]models.Picture
	LoadedAt  time.Time
}

// Events returns the asset's events, treating an absent collection as empty.
func (v *AssetView) Events() []models.Event {
	if v.Asset == nil || v.Asset.Events == nil {
		return []models.Event{}
	}
	return v.Asset.Events
}

// Loader orchestrates asset loads.
//
// Concurrent loads of the same asset coalesce onto one upstream round trip.
// Supersession is scoped per shell session: when one session navigates to a
// different asset while its previous load is still in flight, that load is
// canceled and marked stale so its result is discarded, never committed.
// Loads from other sessions are unaffected. Partial display of an asset
// without pictures is acceptable; pictures without an asset is not a
// reachable state.
type Loader struct {
	client   upstream.ClientInterface
	cache    *cache.Cache
	notifier Notifier

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	sessions   map[string]*loadSession
}

// loadSession tracks one session's in-flight load. Entries exist only while
// a load is outstanding.
type loadSession struct {
	generation uint64
	assetID    string
	cancel     context.CancelFunc
}

// NewLoader creates a loader. The notifier may be nil.
func NewLoader(client upstream.ClientInterface, viewCache *cache.Cache, notifier Notifier) *Loader {
	return &Loader{
		client:   client,
		cache:    viewCache,
		notifier: notifier,
		sessions: make(map[string]*loadSession),
	}
}

// Client exposes the underlying upstream client for operations that bypass
// the composed view, such as resolving a fresh signed download URL.
func (l *Loader) Client() upstream.ClientInterface {
	return l.client
}

// Load returns the composed view for the asset, from cache when fresh.
// The load is not tied to any session and cannot be superseded.
func (l *Loader) Load(ctx context.Context, assetID string) (*AssetView, error) {
	return l.LoadSession(ctx, "", assetID)
}

// LoadSession is Load with supersede tracking for one shell session. A later
// LoadSession call with the same sessionID but a different asset cancels this
// one and its result is discarded. An empty sessionID disables tracking.
func (l *Loader) LoadSession(ctx context.Context, sessionID, assetID string) (*AssetView, error) {
	if cached, ok := l.cache.Get(assetID); ok {
		if assetView, ok := cached.(*AssetView); ok {
			return assetView, nil
		}
	}

	result, err, _ := l.group.Do(assetID, func() (interface{}, error) {
		return l.load(ctx, sessionID, assetID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*AssetView), nil
}

// Refresh drops the cached view and loads fresh.
func (l *Loader) Refresh(ctx context.Context, assetID string) (*AssetView, error) {
	l.cache.Delete(assetID)
	return l.Load(ctx, assetID)
}

func (l *Loader) load(ctx context.Context, sessionID, assetID string) (*AssetView, error) {
	loadCtx, generation := l.begin(ctx, sessionID, assetID)

	var (
		asset         *models.Asset
		pictureEvents []models.PictureEvent
	)

	g, gctx := errgroup.WithContext(loadCtx)
	g.Go(func() error {
		fetched, err := l.client.GetAsset(gctx, assetID)
		if err != nil {
			return err
		}
		asset = fetched
		return nil
	})
	g.Go(func() error {
		// Pictures are best-effort: a failure degrades to empty
		// galleries instead of failing the whole view.
		fetched, err := l.client.GetPictures(gctx, assetID)
		if err != nil {
			logging.Ctx(gctx).Warn().Err(err).Str("asset_id", assetID).
				Msg("picture fetch failed, continuing without galleries")
			return nil
		}
		pictureEvents = fetched
		return nil
	})
	if err := g.Wait(); err != nil {
		if loadCtx.Err() != nil && ctx.Err() == nil {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	assetView := &AssetView{
		Asset:     asset,
		Galleries: associateGalleries(asset, pictureEvents),
		LoadedAt:  time.Now(),
	}

	l.attachDocumentGalleries(loadCtx, assetView)

	if !l.commit(sessionID, generation) {
		return nil, ErrSuperseded
	}

	l.cache.Set(assetID, assetView)
	if l.notifier != nil {
		l.notifier.NotifyAssetRefreshed(assetID)
	}

	return assetView, nil
}

// begin registers a new load for the session. A load for a different asset
// within the same session cancels that session's previous load so an
// out-of-order completion can never overwrite newer state. Sessions are
// isolated from each other.
func (l *Loader) begin(ctx context.Context, sessionID, assetID string) (context.Context, uint64) {
	if sessionID == "" {
		return ctx, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if previous, ok := l.sessions[sessionID]; ok && previous.assetID != assetID {
		previous.cancel()
	}

	loadCtx, cancel := context.WithCancel(ctx)
	l.generation++
	l.sessions[sessionID] = &loadSession{
		generation: l.generation,
		assetID:    assetID,
		cancel:     cancel,
	}
	return loadCtx, l.generation
}

// commit reports whether the load is still current for its session; stale
// results must be discarded by the caller. A current load's session entry is
// removed, so the sessions map only holds in-flight loads.
func (l *Loader) commit(sessionID string, generation uint64) bool {
	if sessionID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.sessions[sessionID]
	if !ok || current.generation != generation {
		return false
	}
	current.cancel()
	delete(l.sessions, sessionID)
	return true
}

// attachDocumentGalleries fans out to the documents endpoint for visible
// OTHER-type events and converts the results to the Picture shape. Zero such
// events means zero document calls. Per-event failures degrade to an empty
// gallery.
func (l *Loader) attachDocumentGalleries(ctx context.Context, assetView *AssetView) {
	var targets []models.Event
	for _, event := range assetView.Events() {
		if event.Visible() && event.Type == models.EventOther {
			targets = append(targets, event)
		}
	}
	if len(targets) == 0 {
		return
	}

	assetID := assetView.Asset.ID
	galleries := make([][]models.Picture, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(documentFetchLimit)
	for i, event := range targets {
		g.Go(func() error {
			pictures, err := l.loadDocumentGallery(ctx, assetID, event.ID)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).
					Str("asset_id", assetID).Str("event_id", event.ID).
					Msg("document fetch failed, continuing without gallery")
				return nil
			}
			galleries[i] = pictures
			return nil
		})
	}
	_ = g.Wait()

	for i, event := range targets {
		if len(galleries[i]) > 0 {
			assetView.Galleries[event.ID] = galleries[i]
		}
	}
}

// loadDocumentGallery lists an event's documents and resolves a signed
// thumbnail URL per document. Thumbnail URLs are time-limited; they are
// resolved per load and never cached beyond it.
func (l *Loader) loadDocumentGallery(ctx context.Context, assetID, eventID string) ([]models.Picture, error) {
	documents, err := l.client.ListEventDocuments(ctx, assetID, eventID)
	if err != nil {
		return nil, err
	}

	pictures := make([]models.Picture, 0, len(documents))
	for _, document := range documents {
		url, err := l.client.GetThumbnailURL(ctx, assetID, eventID, document.Name)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("document", document.Name).
				Msg("thumbnail URL fetch failed, skipping document")
			continue
		}
		pictures = append(pictures, models.Picture{
			FileName:         document.Name,
			URL:              url,
			ContentType:      document.ContentType,
			CreationDateTime: document.CreationDateTime,
		})
	}
	return pictures, nil
}
