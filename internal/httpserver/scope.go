package httpserver

import (
	"net/http"
	"strings"

	"github.com/KRoses96/Neverita/internal/config"
	"github.com/KRoses96/Neverita/internal/userctx"
)

// scoped binds a handler to the {userId} path segment: the segment
// becomes the user the request operates on. When a token was presented
// its subject must match the path user, otherwise the request is
// rejected rather than silently re-scoped.
func (s *Server) scoped(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathUser := strings.TrimSpace(r.PathValue("userId"))
		if pathUser == "" {
			writeRouteError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
			return
		}

		if s.config.AuthMode != config.AuthModeNone && r.Header.Get("Authorization") != "" {
			if tokenUser, ok := userctx.GetUserID(r.Context()); ok && tokenUser != pathUser {
				writeRouteError(w, http.StatusForbidden, "forbidden", "Token does not match the requested user")
				return
			}
		}

		next(w, r.WithContext(userctx.WithUserID(r.Context(), pathUser)))
	}
}

func writeRouteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
