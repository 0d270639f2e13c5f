package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/KRoses96/Neverita/internal/mealplans"
	"github.com/KRoses96/Neverita/internal/recipes"
	"github.com/KRoses96/Neverita/internal/userctx"
)

// legacyRoutes serves the original unscoped API. Every request is
// scoped to DEFAULT_USER_ID, the single-user model the old clients
// were written against. New clients should use /user/{userId}/*.
func (s *Server) legacyRoutes(recipesService *recipes.Service, mealPlansService *mealplans.Service) {
	recipesHandlers := recipes.NewHandlers(recipesService, s.config.UploadMaxMB)
	mealPlansHandlers := mealplans.NewHandlers(mealPlansService)

	// GET /recipes historically returned a bare array, not an object.
	s.mux.HandleFunc("GET /recipes", s.asDefaultUser(func(w http.ResponseWriter, r *http.Request) {
		resp, err := recipesService.List(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			writeRouteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp.Recipes)
	}))
	s.mux.HandleFunc("POST /recipes", s.asDefaultUser(recipesHandlers.HandleCreate))
	s.mux.HandleFunc("GET /recipes/{id}", s.asDefaultUser(recipesHandlers.HandleGet))
	s.mux.HandleFunc("PUT /recipes/{id}", s.asDefaultUser(recipesHandlers.HandleUpdate))
	s.mux.HandleFunc("DELETE /recipes/{id}", s.asDefaultUser(recipesHandlers.HandleDelete))

	s.mux.HandleFunc("GET /daily-meal-plans/{date}", s.asDefaultUser(mealPlansHandlers.HandleGetByDate))
	s.mux.HandleFunc("POST /daily-meal-plans", s.asDefaultUser(mealPlansHandlers.HandleCreate))
}

func (s *Server) asDefaultUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r.WithContext(userctx.WithUserID(r.Context(), s.config.DefaultUserID)))
	}
}
