package mealplans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
)

// PlanDate is a calendar day in a JSON payload. It accepts either a
// YYYY-MM-DD string or a Unix millisecond timestamp (number or numeric
// string), which older clients send; timestamps are truncated to the
// UTC day.
type PlanDate string

func (d *PlanDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*d = ""
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	normalized, err := NormalizeDate(raw)
	if err != nil {
		return err
	}
	*d = PlanDate(normalized)
	return nil
}

// NormalizeDate converts a YYYY-MM-DD string or millisecond timestamp
// into the canonical YYYY-MM-DD form.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("date is required")
	}

	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC().Format("2006-01-02"), nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD or ms timestamp)", raw)
	}
	return t.Format("2006-01-02"), nil
}

// OptionalID distinguishes an absent JSON field from an explicit null
// and from a value. UnmarshalJSON only runs for present fields, so Set
// stays false when the field is omitted.
type OptionalID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid recipe id %q", s)
	}
	o.Value = &id
	return nil
}

// RecipeRef is the embedded recipe summary on a meal plan slot.
type RecipeRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Diet        string    `json:"diet,omitempty"`
}

type MealPlanDTO struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`
	BreakfastID *uuid.UUID `json:"breakfastId"`
	LunchID     *uuid.UUID `json:"lunchId"`
	DinnerID    *uuid.UUID `json:"dinnerId"`
	Breakfast   *RecipeRef `json:"breakfast,omitempty"`
	Lunch       *RecipeRef `json:"lunch,omitempty"`
	Dinner      *RecipeRef `json:"dinner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListMealPlansResponse struct {
	MealPlans []MealPlanDTO `json:"mealPlans"`
}

type CreateMealPlanRequest struct {
	Date        PlanDate   `json:"date"`
	BreakfastID OptionalID `json:"breakfastId"`
	LunchID     OptionalID `json:"lunchId"`
	DinnerID    OptionalID `json:"dinnerId"`
}

// UpdateMealPlanRequest is a partial update: slots absent from the
// JSON body keep their stored value, explicit null clears the slot.
type UpdateMealPlanRequest struct {
	BreakfastID OptionalID `json:"breakfastId"`
	LunchID     OptionalID `json:"lunchId"`
	DinnerID    OptionalID `json:"dinnerId"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r CreateMealPlanRequest) Validate() error {
	if r.Date == "" {
		return fmt.Errorf("date is required")
	}
	return nil
}

func (r UpdateMealPlanRequest) toPatch() storage.MealPlanPatch {
	var patch storage.MealPlanPatch
	if r.BreakfastID.Set {
		patch.Breakfast = &storage.SlotPatch{RecipeID: r.BreakfastID.Value}
	}
	if r.LunchID.Set {
		patch.Lunch = &storage.SlotPatch{RecipeID: r.LunchID.Value}
	}
	if r.DinnerID.Set {
		patch.Dinner = &storage.SlotPatch{RecipeID: r.DinnerID.Value}
	}
	return patch
}
