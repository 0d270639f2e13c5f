package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

type recipesStorage struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]*storage.Recipe
}

func newRecipesStorage() *recipesStorage {
	return &recipesStorage{
		recipes: make(map[uuid.UUID]*storage.Recipe),
	}
}

func (s *recipesStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := []storage.Recipe{}
	for _, r := range s.recipes {
		if r.OwnerUserID == ownerUserID {
			recipes = append(recipes, cloneRecipe(r))
		}
	}

	sort.Slice(recipes, func(i, j int) bool {
		ni, nj := strings.ToLower(recipes[i].Name), strings.ToLower(recipes[j].Name)
		if ni != nj {
			return ni < nj
		}
		return recipes[i].CreatedAt.Before(recipes[j].CreatedAt)
	})
	return recipes, nil
}

func (s *recipesStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok || r.OwnerUserID != ownerUserID {
		return nil, storage.ErrNotFound
	}

	recipe := cloneRecipe(r)
	return &recipe, nil
}

func (s *recipesStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	now := time.Now()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	if recipe.Ingredients == nil {
		recipe.Ingredients = []storage.Ingredient{}
	}

	stored := cloneRecipe(recipe)
	s.recipes[stored.ID] = &stored

	return nil
}

func (s *recipesStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.recipes[recipe.ID]
	if !ok || existing.OwnerUserID != recipe.OwnerUserID {
		return storage.ErrNotFound
	}

	recipe.CreatedAt = existing.CreatedAt
	recipe.UpdatedAt = time.Now()
	if recipe.Ingredients == nil {
		recipe.Ingredients = []storage.Ingredient{}
	}

	stored := cloneRecipe(recipe)
	s.recipes[stored.ID] = &stored

	return nil
}

func (s *recipesStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok || r.OwnerUserID != ownerUserID {
		return storage.ErrNotFound
	}

	delete(s.recipes, id)

	return nil
}

func cloneRecipe(r *storage.Recipe) storage.Recipe {
	out := *r
	out.Ingredients = make([]storage.Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	return out
}
