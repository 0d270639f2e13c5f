package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KRoses96/Neverita/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		AuthMode:          config.AuthModeNone,
		DefaultUserID:     "default",
		LegacyAPIEnabled:  true,
		UploadMaxMB:       10,
		UploadAllowedMime: "image/jpeg,image/png",
		ClipperMaxBodyMB:  2,
		JWTSecret:         "test-secret",
		JWTIssuer:         "neverita",
		JWTTTLMinutes:     60,
	}
}

// serve runs a request through the full middleware chain, the way
// Start wires it.
func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	var handler http.Handler = srv.mux
	handler = srv.authMiddleware.Authenticate(handler)
	handler = RateLimitMiddleware(srv.config, handler)
	handler = CORSMiddleware(srv.config, handler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := serve(srv, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := serve(srv, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestScopedRoutesIsolateUsers(t *testing.T) {
	srv := New(testConfig())

	body := `{"name":"Lentil Soup","description":"","ingredients":[{"name":"lentils"}]}`
	req := httptest.NewRequest(http.MethodPost, "/user/alice/recipes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if w := serve(srv, req); w.Code != http.StatusCreated {
		t.Fatalf("create for alice: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Alice sees her recipe.
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/user/alice/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list for alice: expected 200, got %d", w.Code)
	}
	var listResp struct {
		Recipes []struct {
			Name string `json:"name"`
		} `json:"recipes"`
	}
	if err := json.NewDecoder(w.Body).Decode(&listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listResp.Recipes) != 1 || listResp.Recipes[0].Name != "Lentil Soup" {
		t.Fatalf("unexpected recipes for alice: %+v", listResp.Recipes)
	}

	// Bob does not.
	w = serve(srv, httptest.NewRequest(http.MethodGet, "/user/bob/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list for bob: expected 200, got %d", w.Code)
	}
	listResp.Recipes = nil
	if err := json.NewDecoder(w.Body).Decode(&listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listResp.Recipes) != 0 {
		t.Fatalf("expected no recipes for bob, got %+v", listResp.Recipes)
	}
}

func TestScopedRouteRejectsForeignToken(t *testing.T) {
	cfg := testConfig()
	cfg.AuthMode = config.AuthModeDev
	srv := New(cfg)

	// Issue a token for alice via the dev endpoint.
	tokenReq := httptest.NewRequest(http.MethodPost, "/v1/auth/dev", strings.NewReader(`{"user_id":"alice"}`))
	tokenReq.Header.Set("Content-Type", "application/json")
	w := serve(srv, tokenReq)
	if w.Code != http.StatusOK {
		t.Fatalf("dev token: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}

	// Alice's token against bob's resources is rejected.
	req := httptest.NewRequest(http.MethodGet, "/user/bob/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
	w = serve(srv, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Against her own it works.
	req = httptest.NewRequest(http.MethodGet, "/user/alice/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
	w = serve(srv, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLegacyRecipesReturnsBareArray(t *testing.T) {
	srv := New(testConfig())

	body := `{"name":"Porridge","description":"","ingredients":[{"name":"oats"}]}`
	req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if w := serve(srv, req); w.Code != http.StatusCreated {
		t.Fatalf("legacy create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("legacy list: expected 200, got %d", w.Code)
	}
	raw := strings.TrimSpace(w.Body.String())
	if !strings.HasPrefix(raw, "[") {
		t.Fatalf("expected a bare JSON array, got %s", raw)
	}

	var arr []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		t.Fatalf("failed to decode array: %v", err)
	}
	if len(arr) != 1 || arr[0].Name != "Porridge" {
		t.Fatalf("unexpected legacy recipes: %+v", arr)
	}

	// The legacy surface and the scoped default-user surface are the
	// same data.
	w = serve(srv, httptest.NewRequest(http.MethodGet, "/user/default/recipes/"+arr[0].ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("scoped get of legacy recipe: expected 200, got %d", w.Code)
	}
}

func TestLegacyMealPlanConflict(t *testing.T) {
	srv := New(testConfig())

	body := `{"date":"2026-09-07"}`
	req := httptest.NewRequest(http.MethodPost, "/daily-meal-plans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if w := serve(srv, req); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/daily-meal-plans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(srv, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/daily-meal-plans/2026-09-07", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("legacy get by date: expected 200, got %d", w.Code)
	}
}

func TestLegacyMealPlanMissingDateIsNull(t *testing.T) {
	srv := New(testConfig())

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/daily-meal-plans/2026-09-08", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a date without a plan, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "null" {
		t.Fatalf("expected null body, got %s", body)
	}
}

func TestLegacyRoutesCanBeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyAPIEnabled = false
	srv := New(cfg)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with legacy API off, got %d", w.Code)
	}
}

func TestPlannerWeekThroughServer(t *testing.T) {
	srv := New(testConfig())

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/user/carol/planner/week?start=2026-08-24", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("planner week: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var week struct {
		Start string `json:"start"`
		Days  []struct {
			Date string `json:"date"`
		} `json:"days"`
	}
	if err := json.NewDecoder(w.Body).Decode(&week); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if week.Start != "2026-08-24" {
		t.Errorf("expected start 2026-08-24, got %s", week.Start)
	}
	if len(week.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}
	for i, day := range week.Days {
		want := fmt.Sprintf("2026-08-%02d", 24+i)
		if day.Date != want {
			t.Errorf("day %d: expected %s, got %s", i, want, day.Date)
		}
	}
}
