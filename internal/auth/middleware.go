package auth

import (
	"net/http"
	"strings"

	"github.com/KRoses96/Neverita/internal/config"
	"github.com/KRoses96/Neverita/internal/userctx"
)

// Middleware resolves the request's user and puts it into the
// context. AUTH_MODE=none scopes every request to the default user;
// dev mode reads a Bearer token, falling back to the default user
// unless AUTH_REQUIRED is set.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if m.config.AuthMode == config.AuthModeNone {
			next.ServeHTTP(w, withUser(r, m.config.DefaultUserID))
			return
		}

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			if m.config.AuthRequired {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			next.ServeHTTP(w, withUser(r, m.config.DefaultUserID))
			return
		}

		userID, err := m.authenticateHeader(header)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, withUser(r, userID))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidToken
	}
	return m.service.VerifyJWT(parts[1])
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(userctx.WithUserID(r.Context(), userID))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
