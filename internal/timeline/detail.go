// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import (
	"strconv"

	"github.com/rolltrace/rolltrace/internal/models"
)

const (
	dateFormat     = "02.01.2006"
	dateTimeFormat = "02.01.2006 15:04"
)

// DetailOptions tunes detail content assembly.
type DetailOptions struct {
	// MaxInlineThumbnails caps inline thumbnails; the rest becomes an
	// overflow count.
	MaxInlineThumbnails int

	// ServiceAccount is the operator sentinel for machine-generated
	// events; a matching operator line is suppressed.
	ServiceAccount string
}

// BuildDetail assembles the detail/tooltip content for one event.
//
// Absent optional fields simply omit their lines. Types whose exact time is
// meaningful include the time of day; date-only types do not.
func BuildDetail(event models.Event, pictures []models.Picture, opts DetailOptions) models.EventDetail {
	style, _ := StyleFor(event.Type)

	format := dateFormat
	if style.ShowTime {
		format = dateTimeFormat
	}

	title := event.Title
	if title == "" {
		title = style.Label
	}

	detail := models.EventDetail{
		EventID: event.ID,
		Title:   title,
		Date:    event.CreationDateTime.Format(format),
	}

	if event.Who != "" && event.Who != opts.ServiceAccount {
		detail.Lines = append(detail.Lines, models.DetailLine{Label: "Operator", Value: event.Who})
	}
	if event.Diameter > 0 {
		value := strconv.FormatFloat(event.Diameter, 'f', -1, 64) + " mm"
		detail.Lines = append(detail.Lines, models.DetailLine{Label: "Diameter", Value: value})
	}
	if event.CoverMaterial != "" {
		detail.Lines = append(detail.Lines, models.DetailLine{Label: "Material", Value: event.CoverMaterial})
	}
	if event.Hardness != "" {
		detail.Lines = append(detail.Lines, models.DetailLine{Label: "Hardness", Value: event.Hardness})
	}
	if event.WorkOrder != "" {
		detail.Lines = append(detail.Lines, models.DetailLine{Label: "Work order", Value: event.WorkOrder})
	}

	if event.Comment != "" {
		detail.Comment = event.Comment
		// Free-text comments are the substance of picture documentation,
		// so they are emphasized there.
		detail.Emphasized = event.Type == models.EventPicture
	}

	detail.PictureCount = len(pictures)
	limit := opts.MaxInlineThumbnails
	if limit > len(pictures) {
		limit = len(pictures)
	}
	for _, picture := range pictures[:limit] {
		detail.Thumbnails = append(detail.Thumbnails, models.ThumbnailRef{
			FileName: picture.FileName,
			URL:      picture.URL,
		})
	}
	if len(pictures) > limit {
		detail.MorePictures = len(pictures) - limit
	}

	return detail
}
