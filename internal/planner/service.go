package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/userctx"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Service reconciles editable plan windows against persisted meal
// plan rows: concurrent per-day loads, scatter/gather saves, and the
// slot selection rules of the daily and weekly views.
type Service struct {
	mealPlansStorage storage.MealPlansStorage
	recipesStorage   storage.RecipesStorage
}

func NewService(mealPlansStorage storage.MealPlansStorage, recipesStorage storage.RecipesStorage) *Service {
	return &Service{
		mealPlansStorage: mealPlansStorage,
		recipesStorage:   recipesStorage,
	}
}

// LoadWindow fetches every date of the window concurrently. A failed
// per-day fetch is logged and that day stays all-empty; the window
// always comes back fully populated, never partially failed. Row IDs
// of existing days are captured so a later save can route to update
// instead of create.
func (s *Service) LoadWindow(ctx context.Context, w Window) (*PlanState, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	state := NewPlanState(w)
	var wg sync.WaitGroup
	for _, day := range state.Days {
		wg.Add(1)
		go func(day *DayPlan) {
			defer wg.Done()
			s.loadDay(ctx, userID, day)
		}(day)
	}
	wg.Wait()
	return state, nil
}

// loadDay fills one DayPlan in place. Each goroutine owns exactly one
// day, so no locking is needed.
func (s *Service) loadDay(ctx context.Context, userID string, day *DayPlan) {
	row, err := s.mealPlansStorage.GetMealPlanByDate(ctx, userID, day.Date)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARN planner: load day %s: %v", day.Date, err)
		}
		return
	}
	day.Record = Saved(row.ID)
	day.Breakfast = s.resolveRecipe(ctx, userID, row.BreakfastID)
	day.Lunch = s.resolveRecipe(ctx, userID, row.LunchID)
	day.Dinner = s.resolveRecipe(ctx, userID, row.DinnerID)
}

// resolveRecipe turns a slot reference into a full recipe. Dangling
// or failing lookups leave the slot empty.
func (s *Service) resolveRecipe(ctx context.Context, userID string, recipeID *uuid.UUID) *storage.Recipe {
	if recipeID == nil {
		return nil
	}
	row, err := s.recipesStorage.GetRecipe(ctx, userID, *recipeID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARN planner: resolve recipe %s: %v", recipeID, err)
		}
		return nil
	}
	return row
}

// DayOutcome is the save result for one date of a window.
type DayOutcome struct {
	Date     string
	RecordID *uuid.UUID
	Created  bool
	Err      error
}

// SaveReport aggregates the per-date outcomes of a window save.
// Partial failure is reported explicitly; there is never a blanket
// success acknowledgment.
type SaveReport struct {
	Days []DayOutcome
}

func (r *SaveReport) Saved() int {
	n := 0
	for _, d := range r.Days {
		if d.Err == nil {
			n++
		}
	}
	return n
}

func (r *SaveReport) Failed() int {
	return len(r.Days) - r.Saved()
}

// Summary renders the aggregate as "N of M days saved".
func (r *SaveReport) Summary() string {
	return fmt.Sprintf("%d of %d days saved", r.Saved(), len(r.Days))
}

// SaveWindow persists every day of the state concurrently: days with
// a known row ID get a partial update carrying the three slots, the
// rest get a create. Failures are logged and aggregated per date; a
// successful day's RecordState advances to Saved so a repeated save
// updates instead of creating again.
func (s *Service) SaveWindow(ctx context.Context, state *PlanState) (*SaveReport, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	report := &SaveReport{Days: make([]DayOutcome, len(state.Days))}
	var wg sync.WaitGroup
	for i, day := range state.Days {
		wg.Add(1)
		go func(i int, day *DayPlan) {
			defer wg.Done()
			report.Days[i] = s.saveDay(ctx, userID, day)
		}(i, day)
	}
	wg.Wait()
	return report, nil
}

func (s *Service) saveDay(ctx context.Context, userID string, day *DayPlan) DayOutcome {
	outcome := DayOutcome{Date: day.Date}

	if id, ok := day.Record.ID(); ok {
		patch := storage.MealPlanPatch{
			Breakfast: &storage.SlotPatch{RecipeID: recipeID(day.Breakfast)},
			Lunch:     &storage.SlotPatch{RecipeID: recipeID(day.Lunch)},
			Dinner:    &storage.SlotPatch{RecipeID: recipeID(day.Dinner)},
		}
		row, err := s.mealPlansStorage.UpdateMealPlan(ctx, userID, id, patch)
		if err != nil {
			log.Printf("WARN planner: update plan for %s: %v", day.Date, err)
			outcome.Err = fmt.Errorf("could not update meal plan: %w", err)
			return outcome
		}
		outcome.RecordID = &row.ID
		return outcome
	}

	row := storage.MealPlanRow{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Date:        day.Date,
		BreakfastID: recipeID(day.Breakfast),
		LunchID:     recipeID(day.Lunch),
		DinnerID:    recipeID(day.Dinner),
	}
	if err := s.mealPlansStorage.CreateMealPlan(ctx, &row); err != nil {
		log.Printf("WARN planner: create plan for %s: %v", day.Date, err)
		outcome.Err = fmt.Errorf("could not create meal plan: %w", err)
		return outcome
	}
	day.Record = Saved(row.ID)
	outcome.RecordID = &row.ID
	outcome.Created = true
	return outcome
}

// DayInput is one day's worth of slot IDs arriving over the wire.
type DayInput struct {
	Date      string
	Breakfast *uuid.UUID
	Lunch     *uuid.UUID
	Dinner    *uuid.UUID
}

// SaveDays reconciles wire-level slot IDs against the window: the
// window is loaded first to learn which dates already have rows, the
// given slots replace the loaded ones (nil clears), and the result is
// saved. Every referenced recipe must belong to the user.
func (s *Service) SaveDays(ctx context.Context, w Window, days []DayInput) (*SaveReport, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	state, err := s.LoadWindow(ctx, w)
	if err != nil {
		return nil, err
	}

	for _, input := range days {
		day := state.Day(input.Date)
		if day == nil {
			return nil, fmt.Errorf("%w: date %s is outside the window", ErrInvalidRequest, input.Date)
		}
		for slot, id := range map[Slot]*uuid.UUID{
			SlotBreakfast: input.Breakfast,
			SlotLunch:     input.Lunch,
			SlotDinner:    input.Dinner,
		} {
			if id == nil {
				day.SetSlot(slot, nil)
				continue
			}
			recipe, err := s.recipesStorage.GetRecipe(ctx, userID, *id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return nil, ErrRecipeNotFound
				}
				return nil, err
			}
			day.SetSlot(slot, recipe)
		}
	}

	return s.SaveWindow(ctx, state)
}

// SelectSlot runs one daily-view edit end to end: load the day, open
// the picker on the slot, select the recipe under the toggle policy
// (re-selecting the assigned recipe clears the slot), save, and
// return the updated day.
func (s *Service) SelectSlot(ctx context.Context, date string, slot Slot, recipeID uuid.UUID) (*DayPlan, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	start, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	state, err := s.LoadWindow(ctx, Day(start))
	if err != nil {
		return nil, err
	}
	state.OpenPicker(0, slot)
	state.Select(*recipe, ToggleSelect)

	report, err := s.SaveWindow(ctx, state)
	if err != nil {
		return nil, err
	}
	if outcome := report.Days[0]; outcome.Err != nil {
		return nil, outcome.Err
	}
	return state.Days[0], nil
}

func recipeID(r *storage.Recipe) *uuid.UUID {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
