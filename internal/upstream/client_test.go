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
	"testing"
)

// newTestClient wires a client and token source against two httptest servers:
// one playing the identity provider, one playing the asset-management API.
func newTestClient(t *testing.T, apiHandler http.Handler) (*Client, func()) {
	t.Helper()

	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":300}`))
	}))
	api := httptest.NewServer(apiHandler)

	cfg := testUpstreamConfig(identity.URL)
	cfg.APIBaseURL = api.URL
	tokens := NewTokenSource(cfg)
	client := NewClient(cfg, tokens)

	return client, func() {
		identity.Close()
		api.Close()
	}
}

func verifyUpstreamHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	checkStringEqual(t, "authorization", r.Header.Get("Authorization"), "Bearer tok-1")
	checkStringEqual(t, "tenant header", r.Header.Get("Third-Party"), "tenant-1")
	checkStringEqual(t, "accept", r.Header.Get("Accept"), "application/json")
}

func TestGetAsset(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/api/thing/roller-1")
		verifyUpstreamHeaders(t, r)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "roller-1",
			"name": "Calender Roll 3",
			"diameter": 420.5,
			"events": [
				{"id": "e1", "type": "RECOVERED", "state": "VISIBLE",
				 "creationDateTime": "2021-03-01T08:30:00Z", "coverMaterial": "Rubber"}
			]
		}`))
	}))
	defer cleanup()

	asset, err := client.GetAsset(context.Background(), "roller-1")
	checkNoError(t, err)
	checkStringEqual(t, "id", asset.ID, "roller-1")
	checkStringEqual(t, "name", asset.Name, "Calender Roll 3")
	checkIntEqual(t, "events", len(asset.Events), 1)
	checkStringEqual(t, "event material", asset.Events[0].CoverMaterial, "Rubber")
	checkTrue(t, "event visible", asset.Events[0].Visible())
}

func TestGetAssetNotFound(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer cleanup()

	_, err := client.GetAsset(context.Background(), "missing")

	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestGetAssetAPIError(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer cleanup()

	_, err := client.GetAsset(context.Background(), "roller-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	checkIntEqual(t, "status", apiErr.StatusCode, http.StatusInternalServerError)
	checkStringEqual(t, "body", apiErr.Body, "boom")
}

func TestGetPictures(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/api/assets/roller-1/pictures")
		verifyUpstreamHeaders(t, r)

		_, _ = w.Write([]byte(`{
			"pictureEvents": [
				{"url": "https://app.example/assets/roller-1/events/e1",
				 "pictures": [{"fileName": "a.jpg", "url": "https://signed.example/a.jpg"}]}
			]
		}`))
	}))
	defer cleanup()

	pictureEvents, err := client.GetPictures(context.Background(), "roller-1")
	checkNoError(t, err)
	checkIntEqual(t, "picture events", len(pictureEvents), 1)
	checkIntEqual(t, "pictures", len(pictureEvents[0].Pictures), 1)
	checkStringEqual(t, "file name", pictureEvents[0].Pictures[0].FileName, "a.jpg")
}

func TestGetPicturesNotFoundMeansEmpty(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 404 from the pictures endpoint means no picture events exist,
		// which is a normal state, not an error.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer cleanup()

	pictureEvents, err := client.GetPictures(context.Background(), "roller-1")
	checkNoError(t, err)
	checkIntEqual(t, "picture events", len(pictureEvents), 0)
	checkTrue(t, "non-nil slice", pictureEvents != nil)
}

func TestGetPicturesNullListNormalized(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pictureEvents": null}`))
	}))
	defer cleanup()

	pictureEvents, err := client.GetPictures(context.Background(), "roller-1")
	checkNoError(t, err)
	checkIntEqual(t, "picture events", len(pictureEvents), 0)
	checkTrue(t, "non-nil slice", pictureEvents != nil)
}

func TestListEventDocuments(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/api/assets/roller-1/events/e1/documents")
		_, _ = w.Write([]byte(`[{"name": "scan.png", "contentType": "image/png"}]`))
	}))
	defer cleanup()

	documents, err := client.ListEventDocuments(context.Background(), "roller-1", "e1")
	checkNoError(t, err)
	checkIntEqual(t, "documents", len(documents), 1)
	checkStringEqual(t, "name", documents[0].Name, "scan.png")
}

func TestListEventDocumentsNotFoundMeansEmpty(t *testing.T) {
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer cleanup()

	documents, err := client.ListEventDocuments(context.Background(), "roller-1", "e1")
	checkNoError(t, err)
	checkIntEqual(t, "documents", len(documents), 0)
}

func TestSignedURLEndpointsAreDistinct(t *testing.T) {
	var paths []string
	client, cleanup := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"url": "https://signed.example/doc"}`))
	}))
	defer cleanup()

	thumbURL, err := client.GetThumbnailURL(context.Background(), "roller-1", "e1", "scan.png")
	checkNoError(t, err)
	checkStringEqual(t, "thumbnail url", thumbURL, "https://signed.example/doc")

	downloadURL, err := client.GetDownloadURL(context.Background(), "roller-1", "e1", "scan.png")
	checkNoError(t, err)
	checkStringEqual(t, "download url", downloadURL, "https://signed.example/doc")

	checkIntEqual(t, "requests", len(paths), 2)
	checkStringEqual(t, "thumbnail path", paths[0], "/api/assets/roller-1/events/e1/thumbnails/scan.png")
	checkStringEqual(t, "download path", paths[1], "/api/assets/roller-1/events/e1/download/scan.png")
}

func TestClientAuthFailurePropagates(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer identity.Close()

	cfg := testUpstreamConfig(identity.URL)
	cfg.APIBaseURL = "https://api.example.com"
	client := NewClient(cfg, NewTokenSource(cfg))

	_, err := client.GetAsset(context.Background(), "roller-1")
	checkError(t, err)
	checkTrue(t, "auth error", IsAuthError(err))
}
