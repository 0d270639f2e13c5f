package mealplans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/storage/memory"
	"github.com/KRoses96/Neverita/internal/userctx"
)

type fixture struct {
	handlers *Handlers
	mem      *memory.MemoryStorage
	recipes  map[string]uuid.UUID
}

func newFixture(t *testing.T, userID string, recipeNames ...string) *fixture {
	t.Helper()

	mem := memory.New()
	ids := map[string]uuid.UUID{}
	for _, name := range recipeNames {
		r := storage.Recipe{OwnerUserID: userID, Name: name}
		if err := mem.CreateRecipe(context.Background(), &r); err != nil {
			t.Fatalf("create recipe %q: %v", name, err)
		}
		ids[name] = r.ID
	}

	return &fixture{
		handlers: NewHandlers(NewService(mem, mem)),
		mem:      mem,
		recipes:  ids,
	}
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(userctx.WithUserID(context.Background(), userID))
}

func (f *fixture) create(t *testing.T, userID, body string) MealPlanDTO {
	t.Helper()

	r := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/meal-plans", bytes.NewReader([]byte(body))), userID)
	w := httptest.NewRecorder()
	f.handlers.HandleCreate(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: expected 201, got %d body=%s", w.Code, w.Body.String())
	}

	var dto MealPlanDTO
	if err := json.NewDecoder(w.Body).Decode(&dto); err != nil {
		t.Fatalf("decode created plan: %v", err)
	}
	return dto
}

func TestMealPlanCreateAndGetByDate(t *testing.T) {
	f := newFixture(t, "userA", "Porridge", "Salad")

	body := fmt.Sprintf(`{"date":"2026-08-31","breakfastId":%q,"lunchId":%q}`,
		f.recipes["Porridge"], f.recipes["Salad"])
	created := f.create(t, "userA", body)

	if created.Date != "2026-08-31" {
		t.Fatalf("unexpected date: %q", created.Date)
	}
	if created.Breakfast == nil || created.Breakfast.Name != "Porridge" {
		t.Fatalf("expected embedded breakfast recipe, got %+v", created.Breakfast)
	}
	if created.DinnerID != nil {
		t.Fatal("expected empty dinner slot")
	}

	getReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/2026-08-31", nil), "userA")
	getReq.SetPathValue("date", "2026-08-31")
	getW := httptest.NewRecorder()
	f.handlers.HandleGetByDate(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", getW.Code, getW.Body.String())
	}
}

func TestMealPlanGetByLegacyTimestamp(t *testing.T) {
	f := newFixture(t, "userA")

	// Older clients send the date as a ms timestamp mid-day; it must
	// land on the UTC calendar day.
	ms := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC).UnixMilli()
	f.create(t, "userA", fmt.Sprintf(`{"date":%d}`, ms))

	raw := fmt.Sprintf("%d", ms)
	getReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/"+raw, nil), "userA")
	getReq.SetPathValue("date", raw)
	getW := httptest.NewRecorder()
	f.handlers.HandleGetByDate(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200 for ms timestamp lookup, got %d body=%s", getW.Code, getW.Body.String())
	}

	var dto MealPlanDTO
	if err := json.NewDecoder(getW.Body).Decode(&dto); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if dto.Date != "2026-08-31" {
		t.Fatalf("expected 2026-08-31, got %s", dto.Date)
	}
}

func TestMealPlanOnePerDate(t *testing.T) {
	f := newFixture(t, "userA")

	f.create(t, "userA", `{"date":"2026-09-01"}`)

	r := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/meal-plans", bytes.NewReader([]byte(`{"date":"2026-09-01"}`))), "userA")
	w := httptest.NewRecorder()
	f.handlers.HandleCreate(w, r)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate date, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestMealPlanPartialUpdate(t *testing.T) {
	f := newFixture(t, "userA", "Porridge", "Salad", "Stew")

	body := fmt.Sprintf(`{"date":"2026-09-02","breakfastId":%q,"lunchId":%q}`,
		f.recipes["Porridge"], f.recipes["Salad"])
	created := f.create(t, "userA", body)

	// Set dinner, clear breakfast with explicit null, leave lunch untouched.
	patch := fmt.Sprintf(`{"dinnerId":%q,"breakfastId":null}`, f.recipes["Stew"])
	updReq := asUser(httptest.NewRequest(http.MethodPut, "/api/v1/meal-plans/"+created.ID.String(), bytes.NewReader([]byte(patch))), "userA")
	updReq.SetPathValue("id", created.ID.String())
	updW := httptest.NewRecorder()
	f.handlers.HandleUpdate(updW, updReq)
	if updW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", updW.Code, updW.Body.String())
	}

	var updated MealPlanDTO
	if err := json.NewDecoder(updW.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.BreakfastID != nil {
		t.Fatal("expected breakfast cleared by explicit null")
	}
	if updated.LunchID == nil || *updated.LunchID != f.recipes["Salad"] {
		t.Fatal("expected omitted lunch slot to keep its value")
	}
	if updated.DinnerID == nil || *updated.DinnerID != f.recipes["Stew"] {
		t.Fatal("expected dinner slot set")
	}
}

func TestMealPlanRangeQuery(t *testing.T) {
	f := newFixture(t, "userA")

	for _, date := range []string{"2026-09-07", "2026-09-09", "2026-09-20"} {
		f.create(t, "userA", fmt.Sprintf(`{"date":%q}`, date))
	}

	listReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans?from=2026-09-07&to=2026-09-13", nil), "userA")
	listW := httptest.NewRecorder()
	f.handlers.HandleList(listW, listReq)
	if listW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", listW.Code, listW.Body.String())
	}

	var resp ListMealPlansResponse
	if err := json.NewDecoder(listW.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.MealPlans) != 2 {
		t.Fatalf("expected 2 plans in range, got %d", len(resp.MealPlans))
	}
	if resp.MealPlans[0].Date != "2026-09-07" || resp.MealPlans[1].Date != "2026-09-09" {
		t.Fatalf("expected ordered range results, got %+v", resp.MealPlans)
	}
}

func TestMealPlanRejectsForeignRecipe(t *testing.T) {
	f := newFixture(t, "userB", "Theirs")

	body := fmt.Sprintf(`{"date":"2026-09-03","breakfastId":%q}`, f.recipes["Theirs"])
	r := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/meal-plans", bytes.NewReader([]byte(body))), "userA")
	w := httptest.NewRecorder()
	f.handlers.HandleCreate(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for another user's recipe, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestMealPlanDelete(t *testing.T) {
	f := newFixture(t, "userA")

	created := f.create(t, "userA", `{"date":"2026-09-04"}`)

	delReq := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/meal-plans/"+created.ID.String(), nil), "userA")
	delReq.SetPathValue("id", created.ID.String())
	delW := httptest.NewRecorder()
	f.handlers.HandleDelete(delW, delReq)
	if delW.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", delW.Code, delW.Body.String())
	}

	getReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/2026-09-04", nil), "userA")
	getReq.SetPathValue("date", "2026-09-04")
	getW := httptest.NewRecorder()
	f.handlers.HandleGetByDate(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200 after delete, got %d", getW.Code)
	}
	if body := strings.TrimSpace(getW.Body.String()); body != "null" {
		t.Fatalf("expected null body after delete, got %s", body)
	}
}

func TestMealPlanGetByDateMissingReturnsNull(t *testing.T) {
	f := newFixture(t, "userA")

	getReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/2026-12-24", nil), "userA")
	getReq.SetPathValue("date", "2026-12-24")
	getW := httptest.NewRecorder()
	f.handlers.HandleGetByDate(getW, getReq)

	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200 for a date without a plan, got %d body=%s", getW.Code, getW.Body.String())
	}
	if body := strings.TrimSpace(getW.Body.String()); body != "null" {
		t.Fatalf("expected null body, got %s", body)
	}
}

func TestRecipeDeleteClearsSlots(t *testing.T) {
	f := newFixture(t, "userA", "Porridge")

	body := fmt.Sprintf(`{"date":"2026-09-05","breakfastId":%q}`, f.recipes["Porridge"])
	created := f.create(t, "userA", body)

	if err := f.mem.DeleteRecipe(context.Background(), "userA", f.recipes["Porridge"]); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	getReq := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/meal-plans/2026-09-05", nil), "userA")
	getReq.SetPathValue("date", "2026-09-05")
	getW := httptest.NewRecorder()
	f.handlers.HandleGetByDate(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getW.Code)
	}

	var dto MealPlanDTO
	if err := json.NewDecoder(getW.Body).Decode(&dto); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if dto.ID != created.ID {
		t.Fatalf("expected same plan, got %s", dto.ID)
	}
	if dto.BreakfastID != nil || dto.Breakfast != nil {
		t.Fatal("expected breakfast slot cleared after recipe delete")
	}
}
