package mealplans

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/userctx"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrPlanNotFound     = errors.New("meal plan not found")
	ErrDateAlreadyTaken = errors.New("meal plan already exists for date")
	ErrRecipeNotFound   = errors.New("recipe not found")
)

// Service handles meal plan records, one per user per calendar day.
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

// List returns all plans, or the plans inside [from, to] when both
// bounds are given.
func (s *Service) List(ctx context.Context, from, to string) (*ListMealPlansResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	var rows []storage.MealPlanRow
	var err error
	if from != "" || to != "" {
		fromNorm, ferr := NormalizeDate(from)
		toNorm, terr := NormalizeDate(to)
		if ferr != nil || terr != nil {
			return nil, fmt.Errorf("%w: from and to must both be valid dates", ErrInvalidRequest)
		}
		if fromNorm > toNorm {
			return nil, fmt.Errorf("%w: from is after to", ErrInvalidRequest)
		}
		rows, err = s.mealPlansStorage.ListMealPlansByRange(ctx, userID, fromNorm, toNorm)
	} else {
		rows, err = s.mealPlansStorage.ListMealPlans(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	result := make([]MealPlanDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, s.toDTO(ctx, userID, row))
	}
	return &ListMealPlansResponse{MealPlans: result}, nil
}

// GetByDate returns the plan for one calendar day.
func (s *Service) GetByDate(ctx context.Context, rawDate string) (*MealPlanDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	date, err := NormalizeDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	row, err := s.mealPlansStorage.GetMealPlanByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	dto := s.toDTO(ctx, userID, *row)
	return &dto, nil
}

func (s *Service) Create(ctx context.Context, req CreateMealPlanRequest) (*MealPlanDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	for _, slot := range []OptionalID{req.BreakfastID, req.LunchID, req.DinnerID} {
		if err := s.ensureRecipeOwned(ctx, userID, slot.Value); err != nil {
			return nil, err
		}
	}

	row := storage.MealPlanRow{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Date:        string(req.Date),
		BreakfastID: req.BreakfastID.Value,
		LunchID:     req.LunchID.Value,
		DinnerID:    req.DinnerID.Value,
	}

	if err := s.mealPlansStorage.CreateMealPlan(ctx, &row); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrDateAlreadyTaken
		}
		return nil, err
	}

	dto := s.toDTO(ctx, userID, row)
	return &dto, nil
}

// Update applies a partial update: only slots present in the request
// change, and a null slot clears the stored recipe.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateMealPlanRequest) (*MealPlanDTO, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	for _, slot := range []OptionalID{req.BreakfastID, req.LunchID, req.DinnerID} {
		if !slot.Set {
			continue
		}
		if err := s.ensureRecipeOwned(ctx, userID, slot.Value); err != nil {
			return nil, err
		}
	}

	row, err := s.mealPlansStorage.UpdateMealPlan(ctx, userID, id, req.toPatch())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	dto := s.toDTO(ctx, userID, *row)
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	if err := s.mealPlansStorage.DeleteMealPlan(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ensureRecipeOwned(ctx context.Context, userID string, recipeID *uuid.UUID) error {
	if recipeID == nil {
		return nil
	}
	if _, err := s.recipesStorage.GetRecipe(ctx, userID, *recipeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

func (s *Service) toDTO(ctx context.Context, userID string, row storage.MealPlanRow) MealPlanDTO {
	return MealPlanDTO{
		ID:          row.ID,
		Date:        row.Date,
		BreakfastID: row.BreakfastID,
		LunchID:     row.LunchID,
		DinnerID:    row.DinnerID,
		Breakfast:   s.recipeRef(ctx, userID, row.BreakfastID),
		Lunch:       s.recipeRef(ctx, userID, row.LunchID),
		Dinner:      s.recipeRef(ctx, userID, row.DinnerID),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// recipeRef resolves a slot to its recipe summary. A dangling or
// failing lookup leaves the slot empty rather than failing the plan.
func (s *Service) recipeRef(ctx context.Context, userID string, recipeID *uuid.UUID) *RecipeRef {
	if recipeID == nil {
		return nil
	}
	row, err := s.recipesStorage.GetRecipe(ctx, userID, *recipeID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARN mealplans: resolve recipe %s: %v", recipeID, err)
		}
		return nil
	}
	return &RecipeRef{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Diet:        row.Diet,
	}
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
