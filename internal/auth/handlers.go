package auth

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/KRoses96/Neverita/internal/config"
)

type Handlers struct {
	config  *config.Config
	service *Service
}

func NewHandlers(cfg *config.Config, service *Service) *Handlers {
	return &Handlers{config: cfg, service: service}
}

// HandleDevToken serves POST /v1/auth/dev. Only available in dev auth
// mode; the body may name a user_id, otherwise the shared dev user is
// used.
func (h *Handlers) HandleDevToken(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode != config.AuthModeDev {
		writeError(w, http.StatusNotFound, "not_found", "Dev auth is disabled")
		return
	}

	var req DevAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.SignInDev(req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
