package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KRoses96/Neverita/internal/storage"
)

type mealPlansStorage struct {
	pool *pgxpool.Pool
}

func newMealPlansStorage(pool *pgxpool.Pool) *mealPlansStorage {
	return &mealPlansStorage{pool: pool}
}

const mealPlanColumns = `id, user_id, to_char(plan_date, 'YYYY-MM-DD'), breakfast_id, lunch_id, dinner_id, created_at, updated_at`

func (s *mealPlansStorage) ListMealPlans(ctx context.Context, ownerUserID string) ([]storage.MealPlanRow, error) {
	query := `
		SELECT ` + mealPlanColumns + `
		FROM meal_plans
		WHERE user_id = $1
		ORDER BY plan_date
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	return collectMealPlans(rows)
}

func (s *mealPlansStorage) GetMealPlanByDate(ctx context.Context, ownerUserID string, date string) (*storage.MealPlanRow, error) {
	query := `
		SELECT ` + mealPlanColumns + `
		FROM meal_plans
		WHERE user_id = $1 AND plan_date = $2::date
	`

	plan, err := scanMealPlan(s.pool.QueryRow(ctx, query, ownerUserID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *mealPlansStorage) ListMealPlansByRange(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealPlanRow, error) {
	query := `
		SELECT ` + mealPlanColumns + `
		FROM meal_plans
		WHERE user_id = $1 AND plan_date >= $2::date AND plan_date <= $3::date
		ORDER BY plan_date
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans by range: %w", err)
	}
	defer rows.Close()

	return collectMealPlans(rows)
}

func (s *mealPlansStorage) CreateMealPlan(ctx context.Context, plan *storage.MealPlanRow) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
		INSERT INTO meal_plans (id, user_id, plan_date, breakfast_id, lunch_id, dinner_id, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		plan.ID,
		plan.OwnerUserID,
		plan.Date,
		plan.BreakfastID,
		plan.LunchID,
		plan.DinnerID,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to create meal plan: %w", err)
	}

	return nil
}

func (s *mealPlansStorage) UpdateMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID, patch storage.MealPlanPatch) (*storage.MealPlanRow, error) {
	// Build SET clauses only for slots present in the patch, so an
	// absent slot keeps its stored value.
	set := []string{"updated_at = now()"}
	args := []any{ownerUserID, id}

	addSlot := func(column string, slot *storage.SlotPatch) {
		if slot == nil {
			return
		}
		args = append(args, slot.RecipeID)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addSlot("breakfast_id", patch.Breakfast)
	addSlot("lunch_id", patch.Lunch)
	addSlot("dinner_id", patch.Dinner)

	query := `
		UPDATE meal_plans
		SET ` + strings.Join(set, ", ") + `
		WHERE user_id = $1 AND id = $2
		RETURNING ` + mealPlanColumns

	plan, err := scanMealPlan(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update meal plan: %w", err)
	}

	return plan, nil
}

func (s *mealPlansStorage) DeleteMealPlan(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	query := `DELETE FROM meal_plans WHERE user_id = $1 AND id = $2`

	result, err := s.pool.Exec(ctx, query, ownerUserID, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanMealPlan(row pgx.Row) (*storage.MealPlanRow, error) {
	var plan storage.MealPlanRow
	err := row.Scan(
		&plan.ID,
		&plan.OwnerUserID,
		&plan.Date,
		&plan.BreakfastID,
		&plan.LunchID,
		&plan.DinnerID,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func collectMealPlans(rows pgx.Rows) ([]storage.MealPlanRow, error) {
	plans := []storage.MealPlanRow{}
	for rows.Next() {
		plan, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}
