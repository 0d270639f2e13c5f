package clipper

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KRoses96/Neverita/internal/recipes"
)

type Handlers struct {
	clipper *Clipper
}

func NewHandlers(clipper *Clipper) *Handlers {
	return &Handlers{clipper: clipper}
}

// ClipRequest is the import payload: just the page URL.
type ClipRequest struct {
	URL string `json:"url"`
}

// HandleClip imports a recipe from a URL and returns the created
// draft recipe.
func (h *Handlers) HandleClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	recipe, err := h.clipper.ClipURL(r.Context(), req.URL)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid_request", "A valid http(s) URL is required")
	case errors.Is(err, ErrNoRecipe):
		writeError(w, http.StatusUnprocessableEntity, "no_recipe_found", "No recipe could be extracted from the page")
	case errors.Is(err, ErrFetchFailed):
		writeError(w, http.StatusBadGateway, "fetch_failed", "The page could not be fetched")
	case errors.Is(err, recipes.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, recipes.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", "Extracted recipe is not valid")
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
	writeJSON(w, status, recipes.ErrorResponse{
		Error: recipes.ErrorDetail{Code: code, Message: message},
	})
}
