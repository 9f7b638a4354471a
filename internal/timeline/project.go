// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import (
	"sort"
	"time"

	"github.com/rolltrace/rolltrace/internal/config"
	"github.com/rolltrace/rolltrace/internal/models"
)

// Projection modes.
const (
	ModeDirect     = "direct"
	ModeCompressed = "compressed"
)

// Projector converts filtered event lists into renderable timeline views.
type Projector struct {
	cfg config.TimelineConfig
}

// NewProjector creates a projector with the given tunables.
func NewProjector(cfg config.TimelineConfig) *Projector {
	return &Projector{cfg: cfg}
}

// Project builds the timeline view for the given visible events.
//
// Events whose type is not configured in the classifier are dropped here and
// never reach row assignment. A nil event slice projects to an empty view,
// not an error.
func (p *Projector) Project(assetID string, events []models.Event, mode string, years []int, now time.Time) models.TimelineView {
	if mode != ModeCompressed {
		mode = ModeDirect
	}

	classified := make([]models.Event, 0, len(events))
	rowKeys := make(map[string]models.RowKey, len(events))
	for _, event := range events {
		key, ok := Classify(event)
		if !ok {
			continue
		}
		classified = append(classified, event)
		rowKeys[event.ID] = key
	}

	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].CreationDateTime.Before(classified[j].CreationDateTime)
	})

	groups := BuildGroups(classified)

	view := models.TimelineView{
		AssetID:  assetID,
		Mode:     mode,
		Groups:   groups,
		HeightPx: p.height(len(groups)),
	}

	switch mode {
	case ModeCompressed:
		positions, markers := compressedPositions(classified, p.cfg.SyntheticSpacingDays, p.cfg.GapThresholdDays)
		view.Items = p.buildItems(classified, rowKeys, positions, true)
		view.GapMarkers = markers
		view.Window = compressedWindow(len(classified), p.cfg.SyntheticSpacingDays)
	default:
		view.Items = p.buildItems(classified, rowKeys, nil, false)
		view.Window = ComputeWindow(classified, years, now, p.cfg.WindowPaddingDays)
	}

	return view
}

// buildItems renders one item per classified event. In compressed mode the
// display position comes from the synthetic axis and the label carries the
// real date, since the x-position is no longer meaningful as a date.
func (p *Projector) buildItems(events []models.Event, rowKeys map[string]models.RowKey, positions []time.Time, compressed bool) []models.TimelineItem {
	items := make([]models.TimelineItem, 0, len(events))

	for i, event := range events {
		key := rowKeys[event.ID]
		style := rowStyle(key, event.Type)

		start := event.CreationDateTime
		if compressed {
			start = positions[i]
		}

		label := event.Title
		if label == "" {
			label = style.Label
		}
		if compressed {
			label = label + " (" + event.CreationDateTime.Format("02.01.2006") + ")"
		}

		items = append(items, models.TimelineItem{
			ID:        event.ID,
			GroupID:   key.ID(),
			Start:     start,
			RealTime:  event.CreationDateTime,
			Kind:      style.Kind,
			Label:     label,
			Icon:      style.Icon,
			Color:     style.Color,
			AltColor:  style.AltColor,
			DetailKey: event.ID,
		})
	}

	return items
}

// height derives the rendered pixel height from the number of active rows so
// few rows do not waste vertical space and many rows are not clipped.
func (p *Projector) height(rows int) int {
	height := rows*p.cfg.RowHeightPx + p.cfg.HeaderHeightPx
	if height < p.cfg.MinHeightPx {
		return p.cfg.MinHeightPx
	}
	return height
}
