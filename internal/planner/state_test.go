package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

func testRecipe(name string) storage.Recipe {
	return storage.Recipe{ID: uuid.New(), Name: name}
}

func TestSelectWithoutPickerIsNoOp(t *testing.T) {
	state := NewPlanState(Day(date(2026, time.September, 1)))

	if state.Select(testRecipe("Pancakes"), ToggleSelect) {
		t.Fatal("select without an open picker should report false")
	}
	if state.Days[0].Breakfast != nil || state.Days[0].Lunch != nil || state.Days[0].Dinner != nil {
		t.Fatal("select without an open picker should not touch any slot")
	}
}

func TestSelectAssignsAndClosesPicker(t *testing.T) {
	state := NewPlanState(Day(date(2026, time.September, 1)))
	pancakes := testRecipe("Pancakes")

	state.OpenPicker(0, SlotBreakfast)
	if !state.Select(pancakes, ToggleSelect) {
		t.Fatal("select with an open picker should report true")
	}
	if got := state.Days[0].Breakfast; got == nil || got.ID != pancakes.ID {
		t.Fatal("breakfast slot not assigned")
	}
	if state.PickerOpen() {
		t.Fatal("picker should close after a selection")
	}
}

func TestToggleSelectClearsAssignedRecipe(t *testing.T) {
	state := NewPlanState(Day(date(2026, time.September, 1)))
	soup := testRecipe("Soup")

	state.OpenPicker(0, SlotLunch)
	state.Select(soup, ToggleSelect)

	state.OpenPicker(0, SlotLunch)
	state.Select(soup, ToggleSelect)
	if state.Days[0].Lunch != nil {
		t.Fatal("re-selecting the assigned recipe should clear the slot")
	}
}

func TestOverwriteSelectKeepsReselectedRecipe(t *testing.T) {
	state := NewPlanState(WindowFrom(date(2026, time.August, 24)))
	soup := testRecipe("Soup")

	state.OpenPicker(3, SlotLunch)
	state.Select(soup, OverwriteSelect)

	state.OpenPicker(3, SlotLunch)
	state.Select(soup, OverwriteSelect)
	if got := state.Days[3].Lunch; got == nil || got.ID != soup.ID {
		t.Fatal("overwrite policy should keep the re-selected recipe")
	}
}

func TestSelectDifferentRecipeLeavesSiblingsUntouched(t *testing.T) {
	state := NewPlanState(Day(date(2026, time.September, 1)))
	soup := testRecipe("Soup")
	stew := testRecipe("Stew")
	toast := testRecipe("Toast")

	state.OpenPicker(0, SlotBreakfast)
	state.Select(toast, ToggleSelect)
	state.OpenPicker(0, SlotLunch)
	state.Select(soup, ToggleSelect)

	state.OpenPicker(0, SlotLunch)
	state.Select(stew, ToggleSelect)

	if got := state.Days[0].Lunch; got == nil || got.ID != stew.ID {
		t.Fatal("lunch should hold the newly selected recipe")
	}
	if got := state.Days[0].Breakfast; got == nil || got.ID != toast.ID {
		t.Fatal("breakfast should be untouched by a lunch selection")
	}
	if state.Days[0].Dinner != nil {
		t.Fatal("dinner should stay empty")
	}
}

func TestOpenPickerRejectsOutOfRangeDay(t *testing.T) {
	state := NewPlanState(Day(date(2026, time.September, 1)))

	if state.OpenPicker(1, SlotBreakfast) {
		t.Fatal("day index past the window should be rejected")
	}
	if state.OpenPicker(-1, SlotBreakfast) {
		t.Fatal("negative day index should be rejected")
	}
}

func TestParseSlot(t *testing.T) {
	for _, raw := range []string{"breakfast", "lunch", "dinner"} {
		if _, ok := ParseSlot(raw); !ok {
			t.Errorf("expected %q to parse", raw)
		}
	}
	if _, ok := ParseSlot("brunch"); ok {
		t.Error("expected brunch to be rejected")
	}
}
