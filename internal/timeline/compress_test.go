// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import (
	"testing"
	"time"

	"github.com/rolltrace/rolltrace/internal/models"
)

func TestCompressedPositionsEvenSpacing(t *testing.T) {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		eventAt("e1", base),
		eventAt("e2", base.AddDate(0, 0, 1)),
		eventAt("e3", base.AddDate(0, 0, 2)),
	}

	positions, markers := compressedPositions(events, 14, 90)

	checkSliceLen(t, "positions", len(positions), 3)
	checkSliceLen(t, "markers", len(markers), 0)

	spacing := 14 * 24 * time.Hour
	for i, position := range positions {
		want := compressedEpoch.Add(time.Duration(i) * spacing)
		if !position.Equal(want) {
			t.Errorf("position %d: expected %v, got %v", i, want, position)
		}
	}
	for i := 1; i < len(positions); i++ {
		checkTrue(t, "positions strictly increasing", positions[i].After(positions[i-1]))
	}
}

func TestCompressedPositionsGapMarker(t *testing.T) {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Real deltas of 1, 120 and 5 days: only the 120-day gap crosses the
	// 90-day threshold.
	events := []models.Event{
		eventAt("e1", base),
		eventAt("e2", base.AddDate(0, 0, 1)),
		eventAt("e3", base.AddDate(0, 0, 121)),
		eventAt("e4", base.AddDate(0, 0, 126)),
	}

	positions, markers := compressedPositions(events, 14, 90)

	checkSliceLen(t, "markers", len(markers), 1)
	marker := markers[0]
	checkStringEqual(t, "marker id", marker.ID, "gap-e2-e3")
	checkIntEqual(t, "marker days", marker.Days, 120)

	wantPosition := positions[1].Add(7 * 24 * time.Hour)
	if !marker.Position.Equal(wantPosition) {
		t.Errorf("marker position: expected midpoint %v, got %v", wantPosition, marker.Position)
	}
	checkTrue(t, "marker between neighbors",
		marker.Position.After(positions[1]) && marker.Position.Before(positions[2]))
}

func TestCompressedPositionsThresholdIsExclusive(t *testing.T) {
	base := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		eventAt("e1", base),
		eventAt("e2", base.AddDate(0, 0, 90)),
	}

	_, markers := compressedPositions(events, 14, 90)
	checkSliceLen(t, "markers at exactly threshold", len(markers), 0)
}

func TestCompressedWindowMargins(t *testing.T) {
	window := compressedWindow(3, 14)

	spacing := 14 * 24 * time.Hour
	if !window.Start.Equal(compressedEpoch.Add(-spacing)) {
		t.Errorf("start: expected one spacing before epoch, got %v", window.Start)
	}
	if !window.End.Equal(compressedEpoch.Add(3 * spacing)) {
		t.Errorf("end: expected one spacing after last item, got %v", window.End)
	}
}
