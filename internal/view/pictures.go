// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package view

import (
	"strings"

	"github.com/rolltrace/rolltrace/internal/models"
)

// associateGalleries matches picture events to asset events.
//
// The upstream API provides no foreign key; a picture event only carries a
// deep-link URL that embeds the event identifier, so the association is a
// substring match. This is fragile if one event id is a prefix of another,
// a known upstream limitation preserved for compatibility. Should the API
// ever provide an explicit identifier field, switch to it.
func associateGalleries(asset *models.Asset, pictureEvents []models.PictureEvent) map[string][]models.Picture {
	galleries := make(map[string][]models.Picture)
	if asset == nil || len(pictureEvents) == 0 {
		return galleries
	}

	for _, event := range asset.Events {
		if !event.Visible() || event.ID == "" {
			continue
		}
		for _, pictureEvent := range pictureEvents {
			if strings.Contains(pictureEvent.URL, event.ID) {
				galleries[event.ID] = append(galleries[event.ID], pictureEvent.Pictures...)
			}
		}
	}

	return galleries
}
