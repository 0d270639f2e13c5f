package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KRoses96/Neverita/internal/storage"
)

// PostgresStorage — Postgres implementation of storage.Storage.
type PostgresStorage struct {
	pool      *pgxpool.Pool
	recipes   *recipesStorage
	mealPlans *mealPlansStorage
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:      pool,
		recipes:   newRecipesStorage(pool),
		mealPlans: newMealPlansStorage(pool),
	}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// RecipesStorage methods - delegate to embedded recipes storage.

func (p *PostgresStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	return p.recipes.ListRecipes(ctx, ownerUserID)
}

func (p *PostgresStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	return p.recipes.GetRecipe(ctx, ownerUserID, id)
}

func (p *PostgresStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return p.recipes.CreateRecipe(ctx, recipe)
}

func (p *PostgresStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return p.recipes.UpdateRecipe(ctx, recipe)
}

func (p *PostgresStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	return p.recipes.DeleteRecipe(ctx, ownerUserID, id)
}

// MealPlansStorage methods - delegate to embedded meal plans storage.

func (p *PostgresStorage) ListMealPlans(ctx context.Context, ownerUserID string) ([]storage.MealPlanRow, error) {
	return p.mealPlans.ListMealPlans(ctx, ownerUserID)
}

func (p *PostgresStorage) GetMealPlanByDate(ctx context.Context, ownerUserID string, date string) (*storage.MealPlanRow, error) {
	return p.mealPlans.GetMealPlanByDate(ctx, ownerUserID, date)
}

func (p *PostgresStorage) ListMealPlansByRange(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealPlanRow, error) {
	return p.mealPlans.ListMealPlansByRange(ctx, ownerUserID, from, to)
}

func (p *PostgresStorage) CreateMealPlan(ctx context.Context, plan *storage.MealPlanRow) error {
	return p.mealPlans.CreateMealPlan(ctx, plan)
}

func (p *PostgresStorage) UpdateMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID, patch storage.MealPlanPatch) (*storage.MealPlanRow, error) {
	return p.mealPlans.UpdateMealPlan(ctx, ownerUserID, id, patch)
}

func (p *PostgresStorage) DeleteMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	return p.mealPlans.DeleteMealPlan(ctx, ownerUserID, id)
}

var _ storage.Storage = (*PostgresStorage)(nil)

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
