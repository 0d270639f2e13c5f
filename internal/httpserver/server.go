package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/KRoses96/Neverita/internal/auth"
	"github.com/KRoses96/Neverita/internal/blob"
	"github.com/KRoses96/Neverita/internal/clipper"
	"github.com/KRoses96/Neverita/internal/config"
	"github.com/KRoses96/Neverita/internal/dietsvc"
	"github.com/KRoses96/Neverita/internal/export"
	"github.com/KRoses96/Neverita/internal/mealplans"
	"github.com/KRoses96/Neverita/internal/planner"
	"github.com/KRoses96/Neverita/internal/recipes"
	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/storage/memory"
	"github.com/KRoses96/Neverita/internal/storage/postgres"
)

// Server wires storage, domain services and HTTP routes together.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	authMiddleware *auth.Middleware
}

// New builds a server from config: storage first, then routes.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage picks Postgres when DATABASE_URL is set, otherwise memory.
// A failed Postgres connection falls back to memory so local runs keep
// working without a database.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("Using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("Connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("PostgreSQL connection failed: %v", err)
		log.Println("Falling back to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("PostgreSQL connected")
	s.storage = pgStorage
}

// routes registers all endpoints.
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	authHandlers := auth.NewHandlers(s.config, authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandlers.HandleDevToken)

	// Domain services. The blob store may downgrade s3 to local when the
	// bucket is not configured; presigned image URLs only make sense in
	// s3 mode.
	classifier := dietsvc.NewClassifier(s.config)
	blobStore, blobMode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("blob store initialization failed: %v", err)
	}
	imageOpts := recipes.ImageOptions{
		Presign:           blobMode == config.BlobModeS3,
		PresignTTLSeconds: s.config.Blob.S3.PresignTTLSeconds,
	}
	recipesService := recipes.NewService(s.storage, classifier, blobStore, imageOpts, s.config.UploadAllowedMime)
	recipesHandlers := recipes.NewHandlers(recipesService, s.config.UploadMaxMB)

	mealPlansService := mealplans.NewService(s.storage, s.storage)
	mealPlansHandlers := mealplans.NewHandlers(mealPlansService)

	plannerService := planner.NewService(s.storage, s.storage)
	plannerHandlers := planner.NewHandlers(plannerService)

	exportHandlers := export.NewHandlers(export.NewGenerator(plannerService))

	clipperHandlers := clipper.NewHandlers(clipper.NewClipper(recipesService, s.config.ClipperMaxBodyMB))

	// Recipes API (user-scoped)
	s.mux.HandleFunc("GET /user/{userId}/recipes", s.scoped(recipesHandlers.HandleList))
	s.mux.HandleFunc("POST /user/{userId}/recipes", s.scoped(recipesHandlers.HandleCreate))
	s.mux.HandleFunc("POST /user/{userId}/recipes/import", s.scoped(clipperHandlers.HandleClip))
	s.mux.HandleFunc("GET /user/{userId}/recipes/{id}", s.scoped(recipesHandlers.HandleGet))
	s.mux.HandleFunc("PUT /user/{userId}/recipes/{id}", s.scoped(recipesHandlers.HandleUpdate))
	s.mux.HandleFunc("DELETE /user/{userId}/recipes/{id}", s.scoped(recipesHandlers.HandleDelete))
	s.mux.HandleFunc("POST /user/{userId}/recipes/{id}/image", s.scoped(recipesHandlers.HandleUploadImage))
	s.mux.HandleFunc("PUT /user/{userId}/recipes/{id}/image", s.scoped(recipesHandlers.HandleUploadImage))
	s.mux.HandleFunc("GET /user/{userId}/recipes/{id}/image", s.scoped(recipesHandlers.HandleGetImage))

	// Meal plans API (user-scoped)
	s.mux.HandleFunc("GET /user/{userId}/mealplans", s.scoped(mealPlansHandlers.HandleList))
	s.mux.HandleFunc("POST /user/{userId}/mealplans", s.scoped(mealPlansHandlers.HandleCreate))
	s.mux.HandleFunc("GET /user/{userId}/mealplans/{date}", s.scoped(mealPlansHandlers.HandleGetByDate))
	s.mux.HandleFunc("PUT /user/{userId}/mealplans/{id}", s.scoped(mealPlansHandlers.HandleUpdate))
	s.mux.HandleFunc("DELETE /user/{userId}/mealplans/{id}", s.scoped(mealPlansHandlers.HandleDelete))

	// Planner API (user-scoped): calendar windows over the meal plan rows
	s.mux.HandleFunc("GET /user/{userId}/planner/week", s.scoped(plannerHandlers.HandleGetWeek))
	s.mux.HandleFunc("PUT /user/{userId}/planner/week", s.scoped(plannerHandlers.HandleSaveWeek))
	s.mux.HandleFunc("GET /user/{userId}/planner/day", s.scoped(plannerHandlers.HandleGetDay))
	s.mux.HandleFunc("PUT /user/{userId}/planner/day", s.scoped(plannerHandlers.HandleSaveDay))
	s.mux.HandleFunc("POST /user/{userId}/planner/day/{date}/slot", s.scoped(plannerHandlers.HandleSelectSlot))
	s.mux.HandleFunc("GET /user/{userId}/planner/session", s.scoped(plannerHandlers.HandleGetSession))
	s.mux.HandleFunc("POST /user/{userId}/planner/session/navigate", s.scoped(plannerHandlers.HandleNavigateSession))
	s.mux.HandleFunc("POST /user/{userId}/planner/session/save", s.scoped(plannerHandlers.HandleSaveSession))
	s.mux.HandleFunc("GET /user/{userId}/planner/week/export.pdf", s.scoped(exportHandlers.HandleWeekPDF))
	s.mux.HandleFunc("GET /user/{userId}/planner/week/export.csv", s.scoped(exportHandlers.HandleWeekCSV))

	// Legacy unscoped API (deprecated, kept for old clients)
	if s.config.LegacyAPIEnabled {
		s.legacyRoutes(recipesService, mealPlansService)
	}
}

// handleHealthz reports server liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	// Build middleware chain (outermost first): CORS → Rate Limit → Auth → Router
	var handler http.Handler = s.mux
	handler = s.authMiddleware.Authenticate(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)

	log.Printf("Server listening on http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)

	return http.ListenAndServe(addr, handler)
}

// Close releases the storage connection pool.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
