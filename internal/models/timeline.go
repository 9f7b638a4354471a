// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package models

import "time"

// RowKind discriminates timeline row identities. Rows are either keyed by a
// single event type, by the merged position pair (LINKED+UNLINKED), or by a
// RECOVERED cover material observed in the current event set.
type RowKind string

const (
	RowStatic   RowKind = "static"
	RowPosition RowKind = "position"
	RowMaterial RowKind = "material"
)

// RowKey identifies a timeline row. It is a small tagged value rather than a
// parsed string so identity and ordering are checked by the compiler.
type RowKey struct {
	Kind RowKind `json:"kind"`

	// Type is set for static rows.
	Type EventType `json:"type,omitempty"`

	// Material is set for material rows ("Unknown" when the event carried
	// none).
	Material string `json:"material,omitempty"`
}

// ID renders the stable string form used as the widget group id.
func (k RowKey) ID() string {
	switch k.Kind {
	case RowPosition:
		return "POSITION"
	case RowMaterial:
		return "RECOVERED:" + k.Material
	default:
		return string(k.Type)
	}
}

// TimelineGroup is a renderable row on the timeline.
type TimelineGroup struct {
	Key   RowKey `json:"key"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// ItemKind selects the widget rendering hint for an item.
type ItemKind string

const (
	ItemBox   ItemKind = "box"
	ItemPoint ItemKind = "point"
)

// TimelineItem is one projected, renderable unit. Start is the display
// position: the event's real timestamp in direct mode, or a synthesized
// evenly spaced timestamp in compressed mode. RealTime always carries the
// true timestamp so compressed labels can show the real date.
type TimelineItem struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"groupId"`
	Start    time.Time `json:"start"`
	RealTime time.Time `json:"realTime"`
	Kind     ItemKind  `json:"kind"`
	Label    string    `json:"label"`
	Icon     string    `json:"icon,omitempty"`
	Color    string    `json:"color,omitempty"`
	AltColor string    `json:"altColor,omitempty"`

	// DetailKey is the deferred lookup key for detail content; the shell
	// resolves it through the event detail endpoint on demand.
	DetailKey string `json:"detailKey,omitempty"`
}

// GapMarker represents an elided span of real time in compressed mode. It is
// positioned at the synthetic midpoint between the two events it separates
// and carries the true elapsed day count for display.
type GapMarker struct {
	ID       string    `json:"id"`
	Position time.Time `json:"position"`
	Days     int       `json:"days"`
}

// TimeWindow is the initial visible span supplied with the view so the widget
// is constructed at the right zoom, with no post-construction jump.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimelineView is the full projection served to the shell: rows, items, gap
// markers (compressed mode only), the declarative initial window, and the
// derived pixel height.
type TimelineView struct {
	AssetID    string          `json:"assetId"`
	Mode       string          `json:"mode"`
	Groups     []TimelineGroup `json:"groups"`
	Items      []TimelineItem  `json:"items"`
	GapMarkers []GapMarker     `json:"gapMarkers,omitempty"`
	Window     TimeWindow      `json:"window"`
	HeightPx   int             `json:"heightPx"`
}

// ThumbnailRef is one inline detail thumbnail.
type ThumbnailRef struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

// EventDetail is the assembled detail/tooltip content for one event.
type EventDetail struct {
	EventID string `json:"eventId"`
	Title   string `json:"title"`

	// Date is preformatted; types whose exact time matters include the
	// time of day, date-only types do not.
	Date string `json:"date"`

	// Lines are the optional descriptive fields that were present on the
	// event, in display order.
	Lines []DetailLine `json:"lines,omitempty"`

	// Comment carries the free-text comment. Emphasized marks it for
	// visual emphasis (picture-documentation events).
	Comment    string `json:"comment,omitempty"`
	Emphasized bool   `json:"emphasized,omitempty"`

	Thumbnails    []ThumbnailRef `json:"thumbnails,omitempty"`
	MorePictures  int            `json:"morePictures,omitempty"`
	PictureCount  int            `json:"pictureCount,omitempty"`
}

// DetailLine is one label/value pair of detail content.
type DetailLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AssetSummary is the asset endpoint payload (events elided; the timeline
// endpoint serves the projection).
type AssetSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Status          string  `json:"status,omitempty"`
	Diameter        float64 `json:"diameter,omitempty"`
	CoverLength     float64 `json:"coverLength,omitempty"`
	TotalLength     float64 `json:"totalLength,omitempty"`
	CurrentPosition string  `json:"currentPosition,omitempty"`
	// EventCount is the raw upstream event count, hidden events included;
	// VisibleEvents counts only events eligible for rendering.
	EventCount    int `json:"eventCount"`
	VisibleEvents int `json:"visibleEvents"`
}
