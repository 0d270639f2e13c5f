package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

type mealPlansStorage struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*storage.MealPlanRow
	// index for the one-plan-per-day rule
	byOwnerDate map[string]uuid.UUID // key: "ownerUserID:date" -> plan_id
}

func newMealPlansStorage() *mealPlansStorage {
	return &mealPlansStorage{
		plans:       make(map[uuid.UUID]*storage.MealPlanRow),
		byOwnerDate: make(map[string]uuid.UUID),
	}
}

func ownerDateKey(ownerUserID, date string) string {
	return fmt.Sprintf("%s:%s", ownerUserID, date)
}

func (s *mealPlansStorage) ListMealPlans(ctx context.Context, ownerUserID string) ([]storage.MealPlanRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := []storage.MealPlanRow{}
	for _, p := range s.plans {
		if p.OwnerUserID == ownerUserID {
			plans = append(plans, *p)
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Date < plans[j].Date })
	return plans, nil
}

func (s *mealPlansStorage) GetMealPlanByDate(ctx context.Context, ownerUserID string, date string) (*storage.MealPlanRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byOwnerDate[ownerDateKey(ownerUserID, date)]
	if !ok {
		return nil, storage.ErrNotFound
	}

	plan := *s.plans[id]
	return &plan, nil
}

func (s *mealPlansStorage) ListMealPlansByRange(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealPlanRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// YYYY-MM-DD sorts lexicographically, so string comparison is enough.
	plans := []storage.MealPlanRow{}
	for _, p := range s.plans {
		if p.OwnerUserID == ownerUserID && p.Date >= from && p.Date <= to {
			plans = append(plans, *p)
		}
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Date < plans[j].Date })
	return plans, nil
}

func (s *mealPlansStorage) CreateMealPlan(ctx context.Context, plan *storage.MealPlanRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerDateKey(plan.OwnerUserID, plan.Date)
	if _, exists := s.byOwnerDate[key]; exists {
		return storage.ErrConflict
	}

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	stored := *plan
	s.plans[stored.ID] = &stored
	s.byOwnerDate[key] = stored.ID

	return nil
}

func (s *mealPlansStorage) UpdateMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID, patch storage.MealPlanPatch) (*storage.MealPlanRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok || plan.OwnerUserID != ownerUserID {
		return nil, storage.ErrNotFound
	}

	if patch.Breakfast != nil {
		plan.BreakfastID = patch.Breakfast.RecipeID
	}
	if patch.Lunch != nil {
		plan.LunchID = patch.Lunch.RecipeID
	}
	if patch.Dinner != nil {
		plan.DinnerID = patch.Dinner.RecipeID
	}
	plan.UpdatedAt = time.Now()

	updated := *plan
	return &updated, nil
}

func (s *mealPlansStorage) DeleteMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.plans[id]
	if !ok || plan.OwnerUserID != ownerUserID {
		return storage.ErrNotFound
	}

	delete(s.byOwnerDate, ownerDateKey(plan.OwnerUserID, plan.Date))
	delete(s.plans, id)

	return nil
}

// clearRecipeRefs nils out every slot pointing at the recipe, matching
// the ON DELETE SET NULL foreign keys of the Postgres schema.
func (s *mealPlansStorage) clearRecipeRefs(ownerUserID string, recipeID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, plan := range s.plans {
		if plan.OwnerUserID != ownerUserID {
			continue
		}
		if plan.BreakfastID != nil && *plan.BreakfastID == recipeID {
			plan.BreakfastID = nil
		}
		if plan.LunchID != nil && *plan.LunchID == recipeID {
			plan.LunchID = nil
		}
		if plan.DinnerID != nil && *plan.DinnerID == recipeID {
			plan.DinnerID = nil
		}
	}
}
