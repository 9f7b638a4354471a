// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/rolltrace/rolltrace/internal/models"
)

// compressedEpoch anchors the synthetic axis. The value is arbitrary; only
// the even spacing matters once real timestamps stop being the x-axis.
var compressedEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// compressedPositions maps chronologically sorted events onto evenly spaced
// synthetic timestamps and synthesizes gap markers.
//
// Long idle periods between maintenance events would otherwise consume most
// of the visible axis; compression gives every event roughly equal visual
// weight while preserving the true elapsed time as marker text. Whenever the
// real gap between two consecutive events exceeds gapThresholdDays, a marker
// is placed at the synthetic midpoint carrying the real day count.
func compressedPositions(sorted []models.Event, spacingDays, gapThresholdDays int) ([]time.Time, []models.GapMarker) {
	positions := make([]time.Time, len(sorted))
	var markers []models.GapMarker

	spacing := time.Duration(spacingDays) * 24 * time.Hour
	threshold := time.Duration(gapThresholdDays) * 24 * time.Hour

	for i := range sorted {
		positions[i] = compressedEpoch.Add(time.Duration(i) * spacing)

		if i == 0 {
			continue
		}
		realGap := sorted[i].CreationDateTime.Sub(sorted[i-1].CreationDateTime)
		if realGap <= threshold {
			continue
		}
		midpoint := positions[i-1].Add(spacing / 2)
		markers = append(markers, models.GapMarker{
			ID:       fmt.Sprintf("gap-%s-%s", sorted[i-1].ID, sorted[i].ID),
			Position: midpoint,
			Days:     int(math.Round(realGap.Hours() / 24)),
		})
	}

	return positions, markers
}

// compressedWindow spans the synthetic axis with one spacing unit of margin
// on each side so edge items are not clipped.
func compressedWindow(count, spacingDays int) models.TimeWindow {
	spacing := time.Duration(spacingDays) * 24 * time.Hour
	end := compressedEpoch.Add(time.Duration(count) * spacing)
	return models.TimeWindow{
		Start: compressedEpoch.Add(-spacing),
		End:   end,
	}
}
