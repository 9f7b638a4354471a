// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package filter

import (
	"testing"
	"time"

	"github.com/rolltrace/rolltrace/internal/models"
)

func checkTypeSelected(t *testing.T, s *State, eventType models.EventType, want bool) {
	t.Helper()
	selected := false
	for _, candidate := range s.SelectedTypes() {
		if candidate == eventType {
			selected = true
		}
	}
	if selected != want {
		t.Errorf("%s selected: expected %v, got %v", eventType, want, selected)
	}
}

func visibleEvent(id string, eventType models.EventType, year int) models.Event {
	return models.Event{
		ID:               id,
		Type:             eventType,
		State:            models.StateVisible,
		CreationDateTime: time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewDefaultSelection(t *testing.T) {
	s := New()

	checkTypeSelected(t, s, models.EventRecovered, true)
	checkTypeSelected(t, s, models.EventRegrinded, true)
	checkTypeSelected(t, s, models.EventPicture, true)
	checkTypeSelected(t, s, models.EventOther, true)
	// Engraved starts hidden.
	checkTypeSelected(t, s, models.EventEngraved, false)

	if years := s.SelectedYears(); len(years) != 0 {
		t.Errorf("expected no year restriction, got %v", years)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	s := New()
	s.ToggleType(models.EventRecovered)
	s.SetYears([]int{2020, 2021})

	s.Reset()
	first := append(s.SelectedTypes()[:0:0], s.SelectedTypes()...)
	s.Reset()

	if len(first) != len(s.SelectedTypes()) {
		t.Fatalf("repeated reset changed selection: %v vs %v", first, s.SelectedTypes())
	}
	checkTypeSelected(t, s, models.EventRecovered, true)
	checkTypeSelected(t, s, models.EventEngraved, false)
	if years := s.SelectedYears(); len(years) != 0 {
		t.Errorf("expected years cleared, got %v", years)
	}
}

func TestToggleTypeIgnoresInternalTypes(t *testing.T) {
	s := New()
	before := len(s.SelectedTypes())

	s.ToggleType(models.EventLinked)
	s.ToggleType(models.EventType("MYSTERY"))

	if got := len(s.SelectedTypes()); got != before {
		t.Errorf("internal toggle changed selection: %d vs %d", before, got)
	}
}

func TestVisibleEvents(t *testing.T) {
	s := New()
	events := []models.Event{
		visibleEvent("e1", models.EventRecovered, 2021),
		visibleEvent("e2", models.EventEngraved, 2021), // hidden by default
		visibleEvent("e3", models.EventLinked, 2021),   // internal, always passes
		{ID: "e4", Type: models.EventRecovered, State: models.StateHidden,
			CreationDateTime: time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	visible := s.VisibleEvents(events)

	if len(visible) != 2 {
		t.Fatalf("expected 2 visible events, got %d", len(visible))
	}
	if visible[0].ID != "e1" || visible[1].ID != "e3" {
		t.Errorf("unexpected visible set: %v, %v", visible[0].ID, visible[1].ID)
	}
}

func TestVisibleEventsYearFilter(t *testing.T) {
	s := New()
	s.SetYears([]int{2020})
	events := []models.Event{
		visibleEvent("e1", models.EventRecovered, 2020),
		visibleEvent("e2", models.EventRecovered, 2021),
	}

	visible := s.VisibleEvents(events)

	if len(visible) != 1 || visible[0].ID != "e1" {
		t.Fatalf("expected only the 2020 event, got %d events", len(visible))
	}
}

func TestYearDragSelect(t *testing.T) {
	s := New()

	// Dragging from an unselected year selects the whole span.
	s.BeginYearDrag(2019)
	s.DragOverYear(2020)
	s.DragOverYear(2021)
	s.EndYearDrag()

	years := s.SelectedYears()
	if len(years) != 3 || years[0] != 2019 || years[2] != 2021 {
		t.Fatalf("expected 2019-2021 selected, got %v", years)
	}
}

func TestYearDragDeselectModeFixedAtStart(t *testing.T) {
	s := New()
	s.SetYears([]int{2019, 2020, 2021})

	// Starting on a selected year fixes deselect mode; spanning an
	// unselected year must not flip the mode mid-gesture.
	s.BeginYearDrag(2020)
	s.DragOverYear(2021)
	s.DragOverYear(2022)
	s.EndYearDrag()

	years := s.SelectedYears()
	if len(years) != 1 || years[0] != 2019 {
		t.Fatalf("expected only 2019 to remain selected, got %v", years)
	}
}

func TestDragOverYearOutsideGestureIsNoop(t *testing.T) {
	s := New()
	s.DragOverYear(2020)

	if years := s.SelectedYears(); len(years) != 0 {
		t.Errorf("expected no selection outside a gesture, got %v", years)
	}
}
