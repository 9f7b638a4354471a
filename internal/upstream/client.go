// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package upstream implements the client for the remote asset-management API
// and its OAuth2 identity provider.
//
// Every API call attaches the cached bearer token and the tenant header.
// Failures are never retried automatically; the serving layer surfaces a
// retry affordance to the user instead.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/metrics"
	"github.com/rolltrace/rolltrace/internal/models"
)

// ClientInterface defines the asset-management API operations. Implemented by
// Client for production use and by mocks in tests of the view layer.
type ClientInterface interface {
	GetAsset(ctx context.Context, assetID string) (*models.Asset, error)
	GetPictures(ctx context.Context, assetID string) ([]models.PictureEvent, error)
	ListEventDocuments(ctx context.Context, assetID, eventID string) ([]models.Document, error)
	GetThumbnailURL(ctx context.Context, assetID, eventID, name string) (string, error)
	GetDownloadURL(ctx context.Context, assetID, eventID, name string) (string, error)
}

// Ensure Client implements ClientInterface.
var _ ClientInterface = (*Client)(nil)

// Client provides access to the asset-management REST API.
//
// Thread safety: safe for concurrent use; each request builds its own
// http.Request and the token source serializes refreshes internally.
type Client struct {
	baseURL    string
	tenantID   string
	tokens     *TokenSource
	httpClient *http.Client
}

// NewClient creates an asset-management API client.
func NewClient(cfg config.UpstreamConfig, tokens *TokenSource) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.APIBaseURL, "/"),
		tenantID: cfg.TenantID,
		tokens:   tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAsset fetches an asset with its full event history.
//
// A 404 maps to ErrAssetNotFound so the serving layer can show a dedicated
// empty state; any other non-2xx becomes an APIError with status and body.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	const operation = "get_asset"

	resp, err := c.doGet(ctx, operation, "/api/thing/"+url.PathEscape(assetID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		metrics.RecordUpstreamError(operation, "not_found")
		return nil, fmt.Errorf("asset %s: %w", assetID, ErrAssetNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamError(operation, "api")
		return nil, &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var asset models.Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		metrics.RecordUpstreamError(operation, "decode")
		return nil, fmt.Errorf("failed to decode asset response: %w", err)
	}

	return &asset, nil
}

// GetPictures fetches the picture-event galleries for an asset.
//
// A 404 here means the asset has no PICTURE-type events and is normalized to
// an empty list, not raised as an error.
func (c *Client) GetPictures(ctx context.Context, assetID string) ([]models.PictureEvent, error) {
	const operation = "get_pictures"

	resp, err := c.doGet(ctx, operation, "/api/assets/"+url.PathEscape(assetID)+"/pictures")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return []models.PictureEvent{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamError(operation, "api")
		return nil, &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var list models.PictureEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		metrics.RecordUpstreamError(operation, "decode")
		return nil, fmt.Errorf("failed to decode pictures response: %w", err)
	}
	if list.PictureEvents == nil {
		return []models.PictureEvent{}, nil
	}

	return list.PictureEvents, nil
}

// doGet issues an instrumented GET with the bearer token and tenant header.
func (c *Client) doGet(ctx context.Context, operation, path string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			metrics.RecordUpstreamError(operation, "config")
		} else {
			metrics.RecordUpstreamError(operation, "auth")
		}
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Third-Party", c.tenantID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamError(operation, "transport")
		return nil, fmt.Errorf("upstream %s request failed: %w", operation, err)
	}
	metrics.RecordUpstreamRequest(operation, resp.StatusCode, time.Since(start))

	return resp, nil
}
