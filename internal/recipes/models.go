package recipes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 5000
	maxIngredients       = 100
)

type IngredientDTO struct {
	Name        string `json:"name"`
	Quantity    string `json:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Preparation string `json:"preparation,omitempty"`
	Cooking     string `json:"cooking,omitempty"`
}

type RecipeDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Diet        string          `json:"diet,omitempty"`
	Ingredients []IngredientDTO `json:"ingredients"`
	ImageURL    string          `json:"image_url,omitempty"`
	SourceURL   string          `json:"source_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ListRecipesResponse struct {
	Recipes []RecipeDTO `json:"recipes"`
}

type UpsertRecipeRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Diet        string          `json:"diet"`
	Ingredients []IngredientDTO `json:"ingredients"`
	SourceURL   string          `json:"source_url"`
}

type UploadImageResponse struct {
	ImageURL  string `json:"image_url"`
	SizeBytes int64  `json:"size_bytes"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r UpsertRecipeRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name exceeds %d characters", maxNameLength)
	}
	if len(r.Description) > maxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", maxDescriptionLength)
	}
	if len(r.Ingredients) > maxIngredients {
		return fmt.Errorf("too many ingredients")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("ingredients[%d].name is required", i)
		}
	}
	return nil
}

func toIngredients(in []IngredientDTO) []storage.Ingredient {
	out := make([]storage.Ingredient, 0, len(in))
	for _, ing := range in {
		out = append(out, storage.Ingredient{
			Name:        strings.TrimSpace(ing.Name),
			Quantity:    strings.TrimSpace(ing.Quantity),
			Unit:        strings.TrimSpace(ing.Unit),
			Preparation: strings.TrimSpace(ing.Preparation),
			Cooking:     strings.TrimSpace(ing.Cooking),
		})
	}
	return out
}

func toIngredientDTOs(in []storage.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, 0, len(in))
	for _, ing := range in {
		out = append(out, IngredientDTO{
			Name:        ing.Name,
			Quantity:    ing.Quantity,
			Unit:        ing.Unit,
			Preparation: ing.Preparation,
			Cooking:     ing.Cooking,
		})
	}
	return out
}
