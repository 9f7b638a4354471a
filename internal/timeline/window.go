// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import (
	"time"

	"github.com/rolltrace/rolltrace/internal/models"
)

// ComputeWindow derives the initial visible time window for direct mode.
//
// The window is part of the view payload so the widget is constructed at the
// right zoom: applying it afterwards would produce a visible re-zoom on first
// paint.
//
// Rules:
//   - years selected: Jan 1 of the earliest selected year through Dec 31 of
//     the latest; when the latest is the current year, the end extends to
//     today plus paddingDays so fresh events are not clipped;
//   - no years but events exist: Jan 1 of the earliest event year through
//     Dec 31 of the latest event year;
//   - no events: the current calendar year.
func ComputeWindow(events []models.Event, years []int, now time.Time, paddingDays int) models.TimeWindow {
	if len(years) > 0 {
		minYear, maxYear := years[0], years[0]
		for _, year := range years[1:] {
			if year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}
		end := endOfYear(maxYear)
		if maxYear == now.Year() {
			end = now.AddDate(0, 0, paddingDays)
		}
		return models.TimeWindow{Start: startOfYear(minYear), End: end}
	}

	if len(events) > 0 {
		minYear := events[0].CreationDateTime.Year()
		maxYear := minYear
		for _, event := range events[1:] {
			year := event.CreationDateTime.Year()
			if year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}
		return models.TimeWindow{Start: startOfYear(minYear), End: endOfYear(maxYear)}
	}

	return models.TimeWindow{Start: startOfYear(now.Year()), End: endOfYear(now.Year())}
}

func startOfYear(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func endOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
}
