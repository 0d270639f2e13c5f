package planner

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/mealplans"
	"github.com/KRoses96/Neverita/internal/storage"
)

// SlotDTO is the recipe summary shown in a plan slot.
type SlotDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Diet string    `json:"diet,omitempty"`
}

// DayDTO is one day of a loaded window. ID is absent until the day
// has a persisted row; empty slots are null.
type DayDTO struct {
	Date      string     `json:"date"`
	ID        *uuid.UUID `json:"id,omitempty"`
	Breakfast *SlotDTO   `json:"breakfast"`
	Lunch     *SlotDTO   `json:"lunch"`
	Dinner    *SlotDTO   `json:"dinner"`
}

// WindowDTO is a fully loaded window: always exactly Width days, each
// either resolved or explicitly empty.
type WindowDTO struct {
	Start string   `json:"start"`
	Days  []DayDTO `json:"days"`
}

// SaveDayRequest carries one day's slot IDs. A null or omitted slot
// clears the stored recipe; these are whole-day writes, not patches.
type SaveDayRequest struct {
	Date        mealplans.PlanDate `json:"date"`
	BreakfastID *uuid.UUID         `json:"breakfastId"`
	LunchID     *uuid.UUID         `json:"lunchId"`
	DinnerID    *uuid.UUID         `json:"dinnerId"`
}

func (r SaveDayRequest) Validate() error {
	if r.Date == "" {
		return fmt.Errorf("date is required")
	}
	return nil
}

func (r SaveDayRequest) toInput() DayInput {
	return DayInput{
		Date:      string(r.Date),
		Breakfast: r.BreakfastID,
		Lunch:     r.LunchID,
		Dinner:    r.DinnerID,
	}
}

// SaveWeekRequest carries a full week: the window anchor plus one
// entry per day of the window.
type SaveWeekRequest struct {
	Start mealplans.PlanDate `json:"start"`
	Days  []SaveDayRequest   `json:"days"`
}

func (r SaveWeekRequest) Validate() error {
	if r.Start == "" {
		return fmt.Errorf("start is required")
	}
	if len(r.Days) == 0 {
		return fmt.Errorf("days are required")
	}
	for _, day := range r.Days {
		if err := day.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NavigateRequest asks the session to shift its window.
type NavigateRequest struct {
	Direction string `json:"direction"` // previous | next
}

// SelectSlotRequest is one interactive pick in the daily view.
type SelectSlotRequest struct {
	MealType string    `json:"mealType"`
	RecipeID uuid.UUID `json:"recipeId"`
}

// DayOutcomeDTO reports how one date of a save fared.
type DayOutcomeDTO struct {
	Date   string     `json:"date"`
	Status string     `json:"status"` // created | updated | failed
	ID     *uuid.UUID `json:"id,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// SaveReportDTO is the aggregated result of a window save.
type SaveReportDTO struct {
	Saved   int             `json:"saved"`
	Failed  int             `json:"failed"`
	Summary string          `json:"summary"`
	Days    []DayOutcomeDTO `json:"days"`
}

// ErrorResponse mirrors the error envelope of the other API packages.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toSlotDTO(r *storage.Recipe) *SlotDTO {
	if r == nil {
		return nil
	}
	return &SlotDTO{ID: r.ID, Name: r.Name, Diet: r.Diet}
}

func toDayDTO(day *DayPlan) DayDTO {
	dto := DayDTO{
		Date:      day.Date,
		Breakfast: toSlotDTO(day.Breakfast),
		Lunch:     toSlotDTO(day.Lunch),
		Dinner:    toSlotDTO(day.Dinner),
	}
	if id, ok := day.Record.ID(); ok {
		recordID := id
		dto.ID = &recordID
	}
	return dto
}

func toWindowDTO(w Window, state *PlanState) WindowDTO {
	days := make([]DayDTO, 0, len(state.Days))
	for _, day := range state.Days {
		days = append(days, toDayDTO(day))
	}
	return WindowDTO{Start: w.StartDate(), Days: days}
}

func toReportDTO(report *SaveReport) SaveReportDTO {
	days := make([]DayOutcomeDTO, 0, len(report.Days))
	for _, outcome := range report.Days {
		dto := DayOutcomeDTO{Date: outcome.Date, ID: outcome.RecordID}
		switch {
		case outcome.Err != nil:
			dto.Status = "failed"
			dto.Error = outcome.Err.Error()
		case outcome.Created:
			dto.Status = "created"
		default:
			dto.Status = "updated"
		}
		days = append(days, dto)
	}
	return SaveReportDTO{
		Saved:   report.Saved(),
		Failed:  report.Failed(),
		Summary: report.Summary(),
		Days:    days,
	}
}
