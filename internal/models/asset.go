// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package models defines the wire models received from the asset-management
// API and the projection models served to the timeline shell.
package models

import "time"

// EventType tags an event with its place in the maintenance lifecycle.
type EventType string

// Event types recognized by the classifier. Events carrying any other type
// are dropped from every projection rather than rejected, so upstream
// additions degrade gracefully.
const (
	EventRecovered     EventType = "RECOVERED"
	EventRegrinded     EventType = "REGRINDED"
	EventPicture       EventType = "PICTURE"
	EventEngraved      EventType = "ENGRAVED"
	EventLinked        EventType = "LINKED"
	EventUnlinked      EventType = "UNLINKED"
	EventInitialized   EventType = "INITIALIZED"
	EventUninitialized EventType = "UNINITIALIZED"
	EventOther         EventType = "OTHER"
	EventUnknown       EventType = "UNKNOWN"
)

// Event visibility states. Only visible events are ever projected or counted.
const (
	StateVisible = "VISIBLE"
	StateHidden  = "HIDDEN"
)

// Asset is a roller as returned by the asset-management API. It is replaced
// wholesale on every fetch and never mutated locally.
type Asset struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Diameter    float64 `json:"diameter,omitempty"`
	CoverLength float64 `json:"coverLength,omitempty"`
	TotalLength float64 `json:"totalLength,omitempty"`

	// CurrentPosition references the machine position the roller is mounted
	// in, when linked.
	CurrentPosition string `json:"currentPosition,omitempty"`

	// Events may be absent entirely; callers treat nil as zero events.
	Events []Event `json:"events,omitempty"`
}

// Event is a discrete recorded occurrence in an asset's history.
type Event struct {
	ID               string    `json:"id"`
	Type             EventType `json:"type"`
	State            string    `json:"state"`
	CreationDateTime time.Time `json:"creationDateTime"`

	Title         string  `json:"title,omitempty"`
	Comment       string  `json:"comment,omitempty"`
	Who           string  `json:"who,omitempty"`
	Diameter      float64 `json:"diameter,omitempty"`
	CoverMaterial string  `json:"coverMaterial,omitempty"`
	Hardness      string  `json:"hardness,omitempty"`
	WorkOrder     string  `json:"workOrder,omitempty"`
}

// Visible reports whether the event may be rendered or counted.
func (e Event) Visible() bool {
	return e.State == StateVisible
}

// Picture is a single downloadable image. Download URLs are signed and
// time-limited; they must not be cached beyond the current render.
type Picture struct {
	FileName         string    `json:"fileName"`
	URL              string    `json:"url"`
	ContentType      string    `json:"contentType,omitempty"`
	CreationDateTime time.Time `json:"creationDateTime,omitempty"`
}

// PictureEvent is a gallery attached to an event. The upstream API carries no
// foreign key; the association is made by matching the event identifier as a
// substring of the deep-link URL.
type PictureEvent struct {
	URL      string    `json:"url"`
	Pictures []Picture `json:"pictures"`
}

// PictureEventList is the wire envelope of the pictures endpoint.
type PictureEventList struct {
	PictureEvents []PictureEvent `json:"pictureEvents"`
}

// Document is metadata for an image attached to an OTHER-type event. It is
// retrieved through a separate listing endpoint and converted to the Picture
// shape so downstream consumers handle a single image model.
type Document struct {
	Name             string    `json:"name"`
	ContentType      string    `json:"contentType,omitempty"`
	CreationDateTime time.Time `json:"creationDateTime,omitempty"`
	UpdateDateTime   time.Time `json:"updateDateTime,omitempty"`
}

// Token is the identity endpoint response for the password grant.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
