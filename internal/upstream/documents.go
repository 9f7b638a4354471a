// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/rolltrace/rolltrace/internal/metrics"
	"github.com/rolltrace/rolltrace/internal/models"
)

// signedURLResponse carries a signed, time-limited URL from the thumbnail and
// download endpoints. These URLs are ephemeral and must not be cached beyond
// the current render.
type signedURLResponse struct {
	URL string `json:"url"`
}

// ListEventDocuments lists the image documents attached to an OTHER-type
// event. Listing is a separate call from URL retrieval; use GetThumbnailURL
// or GetDownloadURL for the actual content.
func (c *Client) ListEventDocuments(ctx context.Context, assetID, eventID string) ([]models.Document, error) {
	const operation = "list_documents"

	path := "/api/assets/" + url.PathEscape(assetID) + "/events/" + url.PathEscape(eventID) + "/documents"
	resp, err := c.doGet(ctx, operation, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return []models.Document{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamError(operation, "api")
		return nil, &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var documents []models.Document
	if err := json.NewDecoder(resp.Body).Decode(&documents); err != nil {
		metrics.RecordUpstreamError(operation, "decode")
		return nil, fmt.Errorf("failed to decode documents response: %w", err)
	}

	return documents, nil
}

// GetThumbnailURL retrieves the signed thumbnail URL for one document.
//
// The thumbnails and download path segments are distinct upstream endpoints
// and are not interchangeable.
func (c *Client) GetThumbnailURL(ctx context.Context, assetID, eventID, name string) (string, error) {
	return c.signedURL(ctx, "get_thumbnail_url", assetID, eventID, "thumbnails", name)
}

// GetDownloadURL retrieves the signed full-size download URL for one document.
func (c *Client) GetDownloadURL(ctx context.Context, assetID, eventID, name string) (string, error) {
	return c.signedURL(ctx, "get_download_url", assetID, eventID, "download", name)
}

func (c *Client) signedURL(ctx context.Context, operation, assetID, eventID, segment, name string) (string, error) {
	path := "/api/assets/" + url.PathEscape(assetID) +
		"/events/" + url.PathEscape(eventID) +
		"/" + segment + "/" + url.PathEscape(name)

	resp, err := c.doGet(ctx, operation, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamError(operation, "api")
		return "", &APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var signed signedURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		metrics.RecordUpstreamError(operation, "decode")
		return "", fmt.Errorf("failed to decode signed URL response: %w", err)
	}

	return signed.URL, nil
}
