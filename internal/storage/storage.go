package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated
// (one meal plan per user per date).
var ErrConflict = errors.New("conflict")

// Ingredient is a single entry of a recipe's ingredient list,
// stored as JSONB.
type Ingredient struct {
	Name        string `json:"name"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Preparation string `json:"preparation,omitempty"`
	Cooking     string `json:"cooking,omitempty"`
}

// Recipe — database row for a recipe.
type Recipe struct {
	ID          uuid.UUID
	OwnerUserID string
	Name        string
	Description string
	Diet        string // e.g. "vegan", "vegetarian", "omnivore" (classifier output, may be empty)
	Ingredients []Ingredient
	ImageKey    string // blob store object key, empty when no image
	SourceURL   string // where the recipe was clipped from, empty when entered by hand
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipesStorage manages recipe rows.
type RecipesStorage interface {
	// ListRecipes returns all recipes of a user ordered by name.
	ListRecipes(ctx context.Context, ownerUserID string) ([]Recipe, error)

	// GetRecipe returns a recipe by ID within the owner scope.
	// Returns ErrNotFound when missing or owned by someone else.
	GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*Recipe, error)

	// CreateRecipe inserts a new recipe. ID must be set by the caller.
	CreateRecipe(ctx context.Context, recipe *Recipe) error

	// UpdateRecipe overwrites a recipe within the owner scope.
	UpdateRecipe(ctx context.Context, recipe *Recipe) error

	// DeleteRecipe removes a recipe within the owner scope.
	// Meal plan slots referencing it are cleared, not deleted.
	DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error
}

// MealPlanRow — database row for a single day's meal plan.
// At most one row exists per (owner_user_id, plan_date).
type MealPlanRow struct {
	ID          uuid.UUID
	OwnerUserID string
	Date        string // YYYY-MM-DD
	BreakfastID *uuid.UUID
	LunchID     *uuid.UUID
	DinnerID    *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MealPlanPatch carries a partial update for a meal plan row. A nil
// field is left untouched; a set field replaces the stored value,
// including replacing it with no recipe.
type MealPlanPatch struct {
	Breakfast *SlotPatch
	Lunch     *SlotPatch
	Dinner    *SlotPatch
}

// SlotPatch is the new value for one slot: RecipeID nil clears it.
type SlotPatch struct {
	RecipeID *uuid.UUID
}

// MealPlansStorage manages per-day meal plan rows.
type MealPlansStorage interface {
	// ListMealPlans returns all meal plan rows of a user ordered by date.
	ListMealPlans(ctx context.Context, ownerUserID string) ([]MealPlanRow, error)

	// GetMealPlanByDate returns the row for one date.
	// Returns ErrNotFound when the date has no plan.
	GetMealPlanByDate(ctx context.Context, ownerUserID string, date string) (*MealPlanRow, error)

	// ListMealPlansByRange returns rows with from <= date <= to ordered by date.
	ListMealPlansByRange(ctx context.Context, ownerUserID string, from, to string) ([]MealPlanRow, error)

	// CreateMealPlan inserts a new row. ID must be set by the caller.
	// Returns ErrConflict when the (owner, date) pair already has a row.
	CreateMealPlan(ctx context.Context, plan *MealPlanRow) error

	// UpdateMealPlan applies a partial update to the row with the given ID
	// within the owner scope. Returns the updated row.
	UpdateMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID, patch MealPlanPatch) (*MealPlanRow, error)

	// DeleteMealPlan removes the row within the owner scope.
	DeleteMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID) error
}

// Storage is the facade the HTTP layer receives. Concrete
// implementations live in storage/postgres and storage/memory.
type Storage interface {
	RecipesStorage
	MealPlansStorage

	// Close releases the underlying connection pool (no-op for memory).
	Close() error
}
