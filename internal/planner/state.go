package planner

import (
	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

// Slot names one of the three meals of a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

// ParseSlot maps a wire meal type onto a Slot.
func ParseSlot(raw string) (Slot, bool) {
	switch Slot(raw) {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return Slot(raw), true
	}
	return "", false
}

// RecordState tracks whether a day is backed by a persisted row.
// A day is either Unsaved or Saved with a known row ID; the save
// path branches on this (create vs. partial update).
type RecordState struct {
	id    uuid.UUID
	saved bool
}

func Unsaved() RecordState {
	return RecordState{}
}

func Saved(id uuid.UUID) RecordState {
	return RecordState{id: id, saved: true}
}

// ID returns the persisted row ID when the day is saved.
func (r RecordState) ID() (uuid.UUID, bool) {
	return r.id, r.saved
}

// DayPlan is the editable staging area for one date: three slots each
// holding a full recipe or nothing, plus the persistence state.
type DayPlan struct {
	Date      string
	Record    RecordState
	Breakfast *storage.Recipe
	Lunch     *storage.Recipe
	Dinner    *storage.Recipe
}

// Recipe returns the recipe currently assigned to a slot, nil when
// the slot is empty.
func (d *DayPlan) Recipe(slot Slot) *storage.Recipe {
	return *d.slotRef(slot)
}

func (d *DayPlan) slotRef(slot Slot) **storage.Recipe {
	switch slot {
	case SlotLunch:
		return &d.Lunch
	case SlotDinner:
		return &d.Dinner
	default:
		return &d.Breakfast
	}
}

// SelectPolicy decides what re-selecting an already assigned recipe
// does. The daily view toggles the slot empty, the weekly view
// overwrites; both behaviors are deliberate and kept distinct.
type SelectPolicy int

const (
	ToggleSelect SelectPolicy = iota
	OverwriteSelect
)

type pickerTarget struct {
	day  int
	slot Slot
}

// PlanState is the in-memory plan for one window. It cycles through
// load, edit and save for as long as the view lives; no state is
// terminal.
type PlanState struct {
	Days   []*DayPlan
	picker *pickerTarget
}

// NewPlanState returns an all-empty state covering the window.
func NewPlanState(w Window) *PlanState {
	days := make([]*DayPlan, 0, w.Width)
	for _, date := range w.Dates() {
		days = append(days, &DayPlan{Date: date})
	}
	return &PlanState{Days: days}
}

// Day returns the day plan for a date, nil when the date is outside
// the window.
func (s *PlanState) Day(date string) *DayPlan {
	for _, d := range s.Days {
		if d.Date == date {
			return d
		}
	}
	return nil
}

// OpenPicker marks (day, slot) as the active selection target.
// Reports false when the day index is out of range.
func (s *PlanState) OpenPicker(day int, slot Slot) bool {
	if day < 0 || day >= len(s.Days) {
		return false
	}
	s.picker = &pickerTarget{day: day, slot: slot}
	return true
}

// PickerOpen reports whether a selection target is active.
func (s *PlanState) PickerOpen() bool {
	return s.picker != nil
}

// Select assigns the recipe to the active picker target and closes
// the picker. With no open picker the call is a no-op and reports
// false. Under ToggleSelect, selecting the recipe already assigned
// to the slot clears it instead.
func (s *PlanState) Select(recipe storage.Recipe, policy SelectPolicy) bool {
	if s.picker == nil {
		return false
	}
	target := s.Days[s.picker.day].slotRef(s.picker.slot)
	if policy == ToggleSelect && *target != nil && (*target).ID == recipe.ID {
		*target = nil
	} else {
		picked := recipe
		*target = &picked
	}
	s.picker = nil
	return true
}

// SetSlot assigns a slot directly, bypassing the picker. Used when a
// full plan arrives over the wire rather than from interactive edits.
func (d *DayPlan) SetSlot(slot Slot, recipe *storage.Recipe) {
	*d.slotRef(slot) = recipe
}
