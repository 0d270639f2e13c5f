package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KRoses96/Neverita/internal/mealplans"
	"github.com/KRoses96/Neverita/internal/planner"
)

type Handlers struct {
	generator *Generator
	now       func() time.Time
}

func NewHandlers(generator *Generator) *Handlers {
	return &Handlers{generator: generator, now: time.Now}
}

// HandleWeekPDF serves the week starting at ?start= (current week
// when absent) as a PDF download.
func (h *Handlers) HandleWeekPDF(w http.ResponseWriter, r *http.Request) {
	h.serveWeek(w, r, FormatPDF, "application/pdf")
}

// HandleWeekCSV serves the same window as CSV.
func (h *Handlers) HandleWeekCSV(w http.ResponseWriter, r *http.Request) {
	h.serveWeek(w, r, FormatCSV, "text/csv")
}

func (h *Handlers) serveWeek(w http.ResponseWriter, r *http.Request, format Format, contentType string) {
	window, err := h.weekWindow(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid start date")
		return
	}

	data, err := h.generator.Week(r.Context(), window, format)
	if err != nil {
		if errors.Is(err, planner.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	filename := fmt.Sprintf("meal-plan-%s.%s", window.StartDate(), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handlers) weekWindow(raw string) (planner.Window, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return planner.CurrentWeek(h.now()), nil
	}
	normalized, err := mealplans.NormalizeDate(raw)
	if err != nil {
		return planner.Window{}, err
	}
	start, err := planner.ParseDate(normalized)
	if err != nil {
		return planner.Window{}, err
	}
	return planner.WindowFrom(start), nil
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
