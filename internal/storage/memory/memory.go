package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

// MemoryStorage — in-memory implementation of storage.Storage.
// Used for local runs without a database and in handler tests.
type MemoryStorage struct {
	recipes   *recipesStorage
	mealPlans *mealPlansStorage
}

// New creates an empty MemoryStorage.
func New() *MemoryStorage {
	return &MemoryStorage{
		recipes:   newRecipesStorage(),
		mealPlans: newMealPlansStorage(),
	}
}

func (m *MemoryStorage) Close() error {
	// no-op for memory
	return nil
}

// RecipesStorage methods - delegate to embedded recipes storage.

func (m *MemoryStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	return m.recipes.ListRecipes(ctx, ownerUserID)
}

func (m *MemoryStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	return m.recipes.GetRecipe(ctx, ownerUserID, id)
}

func (m *MemoryStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return m.recipes.CreateRecipe(ctx, recipe)
}

func (m *MemoryStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return m.recipes.UpdateRecipe(ctx, recipe)
}

func (m *MemoryStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	if err := m.recipes.DeleteRecipe(ctx, ownerUserID, id); err != nil {
		return err
	}
	// Mirror the ON DELETE SET NULL behaviour of the Postgres schema.
	m.mealPlans.clearRecipeRefs(ownerUserID, id)
	return nil
}

// MealPlansStorage methods - delegate to embedded meal plans storage.

func (m *MemoryStorage) ListMealPlans(ctx context.Context, ownerUserID string) ([]storage.MealPlanRow, error) {
	return m.mealPlans.ListMealPlans(ctx, ownerUserID)
}

func (m *MemoryStorage) GetMealPlanByDate(ctx context.Context, ownerUserID string, date string) (*storage.MealPlanRow, error) {
	return m.mealPlans.GetMealPlanByDate(ctx, ownerUserID, date)
}

func (m *MemoryStorage) ListMealPlansByRange(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealPlanRow, error) {
	return m.mealPlans.ListMealPlansByRange(ctx, ownerUserID, from, to)
}

func (m *MemoryStorage) CreateMealPlan(ctx context.Context, plan *storage.MealPlanRow) error {
	return m.mealPlans.CreateMealPlan(ctx, plan)
}

func (m *MemoryStorage) UpdateMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID, patch storage.MealPlanPatch) (*storage.MealPlanRow, error) {
	return m.mealPlans.UpdateMealPlan(ctx, ownerUserID, id, patch)
}

func (m *MemoryStorage) DeleteMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	return m.mealPlans.DeleteMealPlan(ctx, ownerUserID, id)
}

var _ storage.Storage = (*MemoryStorage)(nil)
