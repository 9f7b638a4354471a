// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package timeline transforms an asset's visible events into renderable
// timeline rows and items: classification into rows, direct and gap-compressed
// projections, the declarative initial window, and detail content assembly.
package timeline

import (
	"sort"

	"github.com/rolltrace/rolltrace/internal/models"
)

// unknownMaterial substitutes for RECOVERED events that carry no cover
// material, so they still land on a deterministic row.
const unknownMaterial = "Unknown"

// Style holds the visual attributes for an event type. Style is a pure
// function of the type; per-event data never changes it.
type Style struct {
	Label    string
	Icon     string
	Color    string
	AltColor string
	Kind     models.ItemKind

	// ShowTime marks types whose exact time of day is meaningful in detail
	// content. Date-only types (recover, regrind) omit it.
	ShowTime bool
}

// styles is the classifier configuration. Events whose type is absent here
// are excluded from every projection and every count.
var styles = map[models.EventType]Style{
	models.EventRecovered: {
		Label: "Recovered", Icon: "layers", Color: "#1e88e5", AltColor: "#bbdefb",
		Kind: models.ItemBox, ShowTime: false,
	},
	models.EventRegrinded: {
		Label: "Regrinded", Icon: "settings", Color: "#43a047", AltColor: "#c8e6c9",
		Kind: models.ItemBox, ShowTime: false,
	},
	models.EventPicture: {
		Label: "Picture", Icon: "camera", Color: "#fb8c00", AltColor: "#ffe0b2",
		Kind: models.ItemPoint, ShowTime: true,
	},
	models.EventEngraved: {
		Label: "Engraved", Icon: "edit", Color: "#8e24aa", AltColor: "#e1bee7",
		Kind: models.ItemBox, ShowTime: true,
	},
	models.EventLinked: {
		Label: "Linked", Icon: "link", Color: "#00897b", AltColor: "#b2dfdb",
		Kind: models.ItemPoint, ShowTime: true,
	},
	models.EventUnlinked: {
		Label: "Unlinked", Icon: "unlink", Color: "#00897b", AltColor: "#b2dfdb",
		Kind: models.ItemPoint, ShowTime: true,
	},
	models.EventInitialized: {
		Label: "Initialized", Icon: "play", Color: "#546e7a", AltColor: "#cfd8dc",
		Kind: models.ItemPoint, ShowTime: true,
	},
	models.EventUninitialized: {
		Label: "Uninitialized", Icon: "stop", Color: "#546e7a", AltColor: "#cfd8dc",
		Kind: models.ItemPoint, ShowTime: true,
	},
	models.EventOther: {
		Label: "Documentation", Icon: "file", Color: "#6d4c41", AltColor: "#d7ccc8",
		Kind: models.ItemPoint, ShowTime: true,
	},
}

// positionStyle is the fixed override for the merged LINKED/UNLINKED row.
var positionStyle = Style{
	Label: "Position", Icon: "map-pin", Color: "#00897b", AltColor: "#b2dfdb",
	Kind: models.ItemPoint, ShowTime: true,
}

// staticRowOrder fixes the display order of non-material rows. Material rows
// always come first, sorted by material.
var staticRowOrder = []models.EventType{
	models.EventRegrinded,
	models.EventPicture,
	models.EventEngraved,
	models.EventOther,
	models.EventLinked, // stands in for the merged POSITION row
	models.EventInitialized,
	models.EventUninitialized,
}

// StyleFor returns the style for an event type. The second return is false
// for types outside the classifier configuration.
func StyleFor(t models.EventType) (Style, bool) {
	s, ok := styles[t]
	return s, ok
}

// Classify assigns an event to its timeline row. Returns false for events
// whose type is not configured; such events must not reach projection.
func Classify(event models.Event) (models.RowKey, bool) {
	if _, ok := styles[event.Type]; !ok {
		return models.RowKey{}, false
	}

	switch event.Type {
	case models.EventRecovered:
		material := event.CoverMaterial
		if material == "" {
			material = unknownMaterial
		}
		return models.RowKey{Kind: models.RowMaterial, Material: material}, true
	case models.EventLinked, models.EventUnlinked:
		return models.RowKey{Kind: models.RowPosition}, true
	default:
		return models.RowKey{Kind: models.RowStatic, Type: event.Type}, true
	}
}

// rowStyle returns the style used for items on a row. The merged position row
// has a fixed override; material rows reuse the RECOVERED style.
func rowStyle(key models.RowKey, eventType models.EventType) Style {
	if key.Kind == models.RowPosition {
		return positionStyle
	}
	s, ok := styles[eventType]
	if !ok {
		return Style{}
	}
	return s
}

// BuildGroups computes the row set for the given visible events. Rows with no
// events never appear; material rows are sorted lexicographically so
// re-renders are stable; static rows follow the declared display order.
func BuildGroups(events []models.Event) []models.TimelineGroup {
	materials := make(map[string]struct{})
	static := make(map[models.RowKey]struct{})

	for _, event := range events {
		key, ok := Classify(event)
		if !ok {
			continue
		}
		if key.Kind == models.RowMaterial {
			materials[key.Material] = struct{}{}
		} else {
			static[key] = struct{}{}
		}
	}

	groups := make([]models.TimelineGroup, 0, len(materials)+len(static))

	sortedMaterials := make([]string, 0, len(materials))
	for material := range materials {
		sortedMaterials = append(sortedMaterials, material)
	}
	sort.Strings(sortedMaterials)

	order := 0
	for _, material := range sortedMaterials {
		key := models.RowKey{Kind: models.RowMaterial, Material: material}
		groups = append(groups, models.TimelineGroup{
			Key:   key,
			ID:    key.ID(),
			Label: "Recovered (" + material + ")",
			Order: order,
		})
		order++
	}

	for _, eventType := range staticRowOrder {
		var key models.RowKey
		var label string
		switch eventType {
		case models.EventLinked:
			key = models.RowKey{Kind: models.RowPosition}
			label = positionStyle.Label
		default:
			key = models.RowKey{Kind: models.RowStatic, Type: eventType}
			label = styles[eventType].Label
		}
		if _, present := static[key]; !present {
			continue
		}
		groups = append(groups, models.TimelineGroup{
			Key:   key,
			ID:    key.ID(),
			Label: label,
			Order: order,
		})
		order++
	}

	return groups
}
