package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/storage/memory"
	"github.com/KRoses96/Neverita/internal/userctx"
)

const testUser = "planner-tester"

func testContext() context.Context {
	return userctx.WithUserID(context.Background(), testUser)
}

func seedRecipe(t *testing.T, mem *memory.MemoryStorage, name string) storage.Recipe {
	t.Helper()
	recipe := storage.Recipe{ID: uuid.New(), OwnerUserID: testUser, Name: name}
	if err := mem.CreateRecipe(context.Background(), &recipe); err != nil {
		t.Fatalf("seed recipe %s: %v", name, err)
	}
	return recipe
}

// flakyPlans fails day lookups for chosen dates, everything else is
// delegated to the wrapped storage.
type flakyPlans struct {
	storage.MealPlansStorage
	failDates map[string]bool
}

func (f *flakyPlans) GetMealPlanByDate(ctx context.Context, ownerUserID, date string) (*storage.MealPlanRow, error) {
	if f.failDates[date] {
		return nil, errors.New("store unavailable")
	}
	return f.MealPlansStorage.GetMealPlanByDate(ctx, ownerUserID, date)
}

// failingCreate rejects inserts for one date.
type failingCreate struct {
	storage.MealPlansStorage
	failDate string
}

func (f *failingCreate) CreateMealPlan(ctx context.Context, plan *storage.MealPlanRow) error {
	if plan.Date == f.failDate {
		return errors.New("store unavailable")
	}
	return f.MealPlansStorage.CreateMealPlan(ctx, plan)
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)
	ctx := testContext()
	pancakes := seedRecipe(t, mem, "Pancakes")
	window := Day(date(2026, time.September, 1))

	state, err := svc.LoadWindow(ctx, window)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	state.Days[0].SetSlot(SlotBreakfast, &pancakes)

	report, err := svc.SaveWindow(ctx, state)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	first := report.Days[0]
	if !first.Created || first.Err != nil || first.RecordID == nil {
		t.Fatalf("first save should create: %+v", first)
	}

	// The same state saved again must route to update, not a second
	// create against the (user, date) uniqueness constraint.
	report, err = svc.SaveWindow(ctx, state)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	second := report.Days[0]
	if second.Created || second.Err != nil {
		t.Fatalf("second save should update: %+v", second)
	}
	if *second.RecordID != *first.RecordID {
		t.Fatalf("record id changed between saves: %s vs %s", second.RecordID, first.RecordID)
	}

	rows, err := mem.ListMealPlans(ctx, testUser)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row after two saves, got %d", len(rows))
	}
}

func TestFreshWeeklySaveCarriesOnlySelectedSlot(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)
	ctx := testContext()
	soup := seedRecipe(t, mem, "Soup")
	window := WindowFrom(date(2026, time.August, 24))

	state := NewPlanState(window)
	state.OpenPicker(2, SlotLunch)
	state.Select(soup, OverwriteSelect)

	report, err := svc.SaveWindow(ctx, state)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if report.Saved() != 7 || report.Failed() != 0 {
		t.Fatalf("expected all 7 days saved, got %s", report.Summary())
	}

	row, err := mem.GetMealPlanByDate(ctx, testUser, "2026-08-26")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if row.LunchID == nil || *row.LunchID != soup.ID {
		t.Fatal("lunch id not persisted")
	}
	if row.BreakfastID != nil || row.DinnerID != nil {
		t.Fatal("unselected slots should persist as empty")
	}
}

func TestLoadSubstitutesEmptyDayOnFailure(t *testing.T) {
	mem := memory.New()
	ctx := testContext()
	toast := seedRecipe(t, mem, "Toast")

	window := WindowFrom(date(2026, time.August, 24))
	for _, d := range []string{"2026-08-24", "2026-08-25"} {
		bID := toast.ID
		row := storage.MealPlanRow{ID: uuid.New(), OwnerUserID: testUser, Date: d, BreakfastID: &bID}
		if err := mem.CreateMealPlan(ctx, &row); err != nil {
			t.Fatalf("seed plan: %v", err)
		}
	}

	svc := NewService(&flakyPlans{
		MealPlansStorage: mem,
		failDates:        map[string]bool{"2026-08-25": true},
	}, mem)

	state, err := svc.LoadWindow(ctx, window)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Days) != 7 {
		t.Fatalf("expected 7 days regardless of failures, got %d", len(state.Days))
	}

	if got := state.Days[0].Breakfast; got == nil || got.ID != toast.ID {
		t.Fatal("healthy day should resolve its recipe")
	}
	failed := state.Days[1]
	if failed.Breakfast != nil || failed.Lunch != nil || failed.Dinner != nil {
		t.Fatal("failed day should come back all-empty")
	}
	if _, saved := failed.Record.ID(); saved {
		t.Fatal("failed day must not carry a record id")
	}
}

func TestSaveReportsPartialFailure(t *testing.T) {
	mem := memory.New()
	ctx := testContext()
	svc := NewService(&failingCreate{
		MealPlansStorage: mem,
		failDate:         "2026-08-27",
	}, mem)

	state := NewPlanState(WindowFrom(date(2026, time.August, 24)))
	report, err := svc.SaveWindow(ctx, state)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if report.Saved() != 6 || report.Failed() != 1 {
		t.Fatalf("expected 6 saved / 1 failed, got %d / %d", report.Saved(), report.Failed())
	}
	if got := report.Summary(); got != "6 of 7 days saved" {
		t.Fatalf("unexpected summary %q", got)
	}
	for _, outcome := range report.Days {
		if outcome.Date == "2026-08-27" {
			if outcome.Err == nil {
				t.Fatal("failed date should carry its error")
			}
		} else if outcome.Err != nil {
			t.Fatalf("date %s should have saved: %v", outcome.Date, outcome.Err)
		}
	}
}

func TestSaveDaysRejectsForeignRecipe(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)
	ctx := testContext()

	foreign := storage.Recipe{ID: uuid.New(), OwnerUserID: "someone-else", Name: "Secret Stew"}
	if err := mem.CreateRecipe(context.Background(), &foreign); err != nil {
		t.Fatalf("seed foreign recipe: %v", err)
	}

	foreignID := foreign.ID
	_, err := svc.SaveDays(ctx, Day(date(2026, time.September, 1)), []DayInput{
		{Date: "2026-09-01", Lunch: &foreignID},
	})
	if !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestSaveDaysRejectsDateOutsideWindow(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)

	_, err := svc.SaveDays(testContext(), Day(date(2026, time.September, 1)), []DayInput{
		{Date: "2026-09-02"},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSelectSlotToggles(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)
	ctx := testContext()
	curry := seedRecipe(t, mem, "Curry")

	day, err := svc.SelectSlot(ctx, "2026-09-01", SlotDinner, curry.ID)
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	if day.Dinner == nil || day.Dinner.ID != curry.ID {
		t.Fatal("dinner not assigned")
	}

	day, err = svc.SelectSlot(ctx, "2026-09-01", SlotDinner, curry.ID)
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if day.Dinner != nil {
		t.Fatal("re-selecting the assigned recipe should clear the slot")
	}

	row, err := mem.GetMealPlanByDate(ctx, testUser, "2026-09-01")
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if row.DinnerID != nil {
		t.Fatal("cleared slot should persist as empty")
	}
}

func TestLoadWindowRequiresUser(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)

	_, err := svc.LoadWindow(context.Background(), Day(date(2026, time.September, 1)))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
