package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KRoses96/Neverita/internal/mealplans"
)

type Handlers struct {
	service *Service
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service:  service,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// HandleGetWeek serves the loaded week starting at ?start=, or the
// current week when the param is absent.
func (h *Handlers) HandleGetWeek(w http.ResponseWriter, r *http.Request) {
	window, err := h.weekWindow(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid start date")
		return
	}

	state, err := h.service.LoadWindow(r.Context(), window)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(window, state))
}

// HandleSaveWeek persists a full week and reports the per-date
// outcomes instead of a blanket success.
func (h *Handlers) HandleSaveWeek(w http.ResponseWriter, r *http.Request) {
	var req SaveWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	start, err := ParseDate(string(req.Start))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid start date")
		return
	}

	inputs := make([]DayInput, 0, len(req.Days))
	for _, day := range req.Days {
		inputs = append(inputs, day.toInput())
	}

	report, err := h.service.SaveDays(r.Context(), WindowFrom(start), inputs)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleGetDay serves the single-day window for ?date=, defaulting to
// today.
func (h *Handlers) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	window, err := h.dayWindow(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	state, err := h.service.LoadWindow(r.Context(), window)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(window, state))
}

// HandleSaveDay persists one day, reported in the same aggregate
// shape as the weekly save.
func (h *Handlers) HandleSaveDay(w http.ResponseWriter, r *http.Request) {
	var req SaveDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	date, err := ParseDate(string(req.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	report, err := h.service.SaveDays(r.Context(), Day(date), []DayInput{req.toInput()})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// HandleSelectSlot applies one daily-view pick: selecting the recipe
// already in the slot clears it, anything else assigns it. The
// updated day is returned.
func (h *Handlers) HandleSelectSlot(w http.ResponseWriter, r *http.Request) {
	date, err := mealplans.NormalizeDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}

	var req SelectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	slot, ok := ParseSlot(strings.TrimSpace(req.MealType))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "mealType must be breakfast, lunch or dinner")
		return
	}

	day, err := h.service.SelectSlot(r.Context(), date, slot, req.RecipeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// HandleGetSession returns the session's current window, loading the
// current week on first access.
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	state := sess.State()
	if state == nil {
		state, err = sess.Load(r.Context())
		if err != nil {
			h.handleError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toWindowDTO(sess.Window(), state))
}

// HandleNavigateSession shifts the session's window one width in the
// requested direction. A navigation that overtakes a slower in-flight
// load wins: the superseded result is dropped when it arrives.
func (h *Handlers) HandleNavigateSession(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	dir, ok := ParseDirection(strings.TrimSpace(req.Direction))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "direction must be previous or next")
		return
	}

	sess, err := h.sessionFor(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	state, err := sess.Navigate(r.Context(), dir)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(sess.Window(), state))
}

// HandleSaveSession persists the session's current state.
func (h *Handlers) HandleSaveSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessionFor(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	report, err := sess.Save(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// sessionFor returns the per-user session, creating one anchored to
// the current week on first use.
func (h *Handlers) sessionFor(ctx context.Context) (*Session, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[userID]
	if !ok {
		sess = NewSession(h.service, CurrentWeek(h.now()))
		h.sessions[userID] = sess
	}
	return sess, nil
}

func (h *Handlers) weekWindow(raw string) (Window, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CurrentWeek(h.now()), nil
	}
	normalized, err := mealplans.NormalizeDate(raw)
	if err != nil {
		return Window{}, err
	}
	start, err := ParseDate(normalized)
	if err != nil {
		return Window{}, err
	}
	return WindowFrom(start), nil
}

func (h *Handlers) dayWindow(raw string) (Window, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Day(h.now()), nil
	}
	normalized, err := mealplans.NormalizeDate(raw)
	if err != nil {
		return Window{}, err
	}
	date, err := ParseDate(normalized)
	if err != nil {
		return Window{}, err
	}
	return Day(date), nil
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request")
	case errors.Is(err, ErrRecipeNotFound):
		writeError(w, http.StatusBadRequest, "invalid_request", "Referenced recipe not found")
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}
