package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KRoses96/Neverita/internal/storage"
)

type recipesStorage struct {
	pool *pgxpool.Pool
}

func newRecipesStorage(pool *pgxpool.Pool) *recipesStorage {
	return &recipesStorage{pool: pool}
}

func (s *recipesStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	query := `
		SELECT id, user_id, name, description, diet, ingredients, image_key, source_url, created_at, updated_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY lower(name), created_at
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []storage.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}

	return recipes, rows.Err()
}

func (s *recipesStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	query := `
		SELECT id, user_id, name, description, diet, ingredients, image_key, source_url, created_at, updated_at
		FROM recipes
		WHERE user_id = $1 AND id = $2
	`

	recipe, err := scanRecipe(s.pool.QueryRow(ctx, query, ownerUserID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return recipe, nil
}

func (s *recipesStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	ingredients, err := json.Marshal(ingredientsOrEmpty(recipe.Ingredients))
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	query := `
		INSERT INTO recipes (id, user_id, name, description, diet, ingredients, image_key, source_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		recipe.ID,
		recipe.OwnerUserID,
		recipe.Name,
		recipe.Description,
		recipe.Diet,
		ingredients,
		recipe.ImageKey,
		recipe.SourceURL,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	return nil
}

func (s *recipesStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	recipe.UpdatedAt = time.Now()

	ingredients, err := json.Marshal(ingredientsOrEmpty(recipe.Ingredients))
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	query := `
		UPDATE recipes
		SET name = $3, description = $4, diet = $5, ingredients = $6, image_key = $7, source_url = $8, updated_at = $9
		WHERE user_id = $1 AND id = $2
	`

	result, err := s.pool.Exec(ctx, query,
		recipe.OwnerUserID,
		recipe.ID,
		recipe.Name,
		recipe.Description,
		recipe.Diet,
		ingredients,
		recipe.ImageKey,
		recipe.SourceURL,
		recipe.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *recipesStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	// ON DELETE SET NULL clears any meal plan slots pointing at the recipe.
	query := `DELETE FROM recipes WHERE user_id = $1 AND id = $2`

	result, err := s.pool.Exec(ctx, query, ownerUserID, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanRecipe(row pgx.Row) (*storage.Recipe, error) {
	var recipe storage.Recipe
	var ingredients []byte

	err := row.Scan(
		&recipe.ID,
		&recipe.OwnerUserID,
		&recipe.Name,
		&recipe.Description,
		&recipe.Diet,
		&ingredients,
		&recipe.ImageKey,
		&recipe.SourceURL,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []storage.Ingredient{}
	}

	return &recipe, nil
}

func ingredientsOrEmpty(in []storage.Ingredient) []storage.Ingredient {
	if in == nil {
		return []storage.Ingredient{}
	}
	return in
}
