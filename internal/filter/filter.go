// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

// Package filter holds the user-selected event type and year sets and derives
// the visible subset of an asset's events. Pure UI state; never persisted.
//
// The year-drag methods (BeginYearDrag, DragOverYear, EndYearDrag) define the
// canonical drag-selection semantics for the shell's year bar to mirror. The
// HTTP API itself is stateless and accepts only the resulting year set; the
// gesture state machine is not driven over the wire.
package filter

import (
	"sort"

	"github.com/rolltrace/rolltrace/internal/models"
)

// MainTypes are the user-toggleable event types. Types outside this set are
// internal/system events and always pass the type filter.
var MainTypes = []models.EventType{
	models.EventRecovered,
	models.EventRegrinded,
	models.EventPicture,
	models.EventEngraved,
	models.EventOther,
}

// initiallyHidden is excluded from the default selection.
const initiallyHidden = models.EventEngraved

// State holds the current type and year selection. Not safe for concurrent
// use; each shell session owns its own State.
type State struct {
	types map[models.EventType]bool
	years map[int]bool

	// dragSelecting is non-nil during a year drag gesture. The mode is
	// fixed at drag start and applied to every spanned year.
	dragSelecting *bool
}

// New returns a State with the default selection: all main types except the
// initially hidden one, and no year restriction.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores the default type selection and clears the year selection.
// Idempotent.
func (s *State) Reset() {
	s.types = make(map[models.EventType]bool, len(MainTypes))
	for _, t := range MainTypes {
		s.types[t] = t != initiallyHidden
	}
	s.years = make(map[int]bool)
	s.dragSelecting = nil
}

// ToggleType flips the selection of one main type. Unknown types are ignored.
func (s *State) ToggleType(t models.EventType) {
	if _, ok := s.types[t]; !ok {
		return
	}
	s.types[t] = !s.types[t]
}

// SetTypes replaces the type selection with exactly the given main types.
func (s *State) SetTypes(selected []models.EventType) {
	for t := range s.types {
		s.types[t] = false
	}
	for _, t := range selected {
		if _, ok := s.types[t]; ok {
			s.types[t] = true
		}
	}
}

// SetYears replaces the year selection. An empty set means all years.
func (s *State) SetYears(years []int) {
	s.years = make(map[int]bool, len(years))
	for _, year := range years {
		s.years[year] = true
	}
}

// SelectedTypes returns the selected main types in declaration order.
func (s *State) SelectedTypes() []models.EventType {
	selected := make([]models.EventType, 0, len(MainTypes))
	for _, t := range MainTypes {
		if s.types[t] {
			selected = append(selected, t)
		}
	}
	return selected
}

// SelectedYears returns the selected years in ascending order.
func (s *State) SelectedYears() []int {
	years := make([]int, 0, len(s.years))
	for year, on := range s.years {
		if on {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}

// VisibleEvents derives the visible subset: visible state, type permitted
// (main types honor the selection, internal types always pass), and year
// permitted (empty selection passes everything).
func (s *State) VisibleEvents(events []models.Event) []models.Event {
	visible := make([]models.Event, 0, len(events))
	years := s.SelectedYears()

	for _, event := range events {
		if !event.Visible() {
			continue
		}
		if selected, main := s.types[event.Type]; main && !selected {
			continue
		}
		if len(years) > 0 && !s.years[event.CreationDateTime.Year()] {
			continue
		}
		visible = append(visible, event)
	}

	return visible
}

// BeginYearDrag starts a drag gesture on the given year. Starting on an
// already-selected year fixes deselect mode for the whole gesture; starting
// on an unselected year fixes select mode. The anchor year is applied
// immediately.
func (s *State) BeginYearDrag(year int) {
	selecting := !s.years[year]
	s.dragSelecting = &selecting
	s.applyDrag(year)
}

// DragOverYear applies the fixed drag mode to a year spanned by cursor
// movement. No-op outside a gesture.
func (s *State) DragOverYear(year int) {
	if s.dragSelecting == nil {
		return
	}
	s.applyDrag(year)
}

// EndYearDrag finishes the gesture.
func (s *State) EndYearDrag() {
	s.dragSelecting = nil
}

func (s *State) applyDrag(year int) {
	if *s.dragSelecting {
		s.years[year] = true
	} else {
		delete(s.years, year)
	}
}
