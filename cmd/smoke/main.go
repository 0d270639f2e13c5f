package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase  string
	token    string
	userID   string
	client   = &http.Client{Timeout: 30 * time.Second}
	testDate string

	recipeID string
	planID   string
)

func main() {
	fmt.Println("=== Neverita E2E Smoke Test ===")
	fmt.Println()

	// Load config from env
	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")
	userID = getEnv("SMOKE_USER_ID", "smoke-user")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Printf("User ID: %s\n", userID)
	fmt.Println()

	// Test date (today)
	testDate = time.Now().Format("2006-01-02")

	// Run smoke tests
	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Create Recipe", testCreateRecipe},
		{"List Recipes", testListRecipes},
		{"Get Planner Week", testGetPlannerWeek},
		{"Save Planner Day", testSavePlannerDay},
		{"Toggle Slot", testToggleSlot},
		{"Export Week (CSV)", testExportWeekCSV},
		{"Export Week (PDF)", testExportWeekPDF},
		{"Delete Meal Plan", testDeleteMealPlan},
		{"Delete Recipe", testDeleteRecipe},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := doRequest("GET", "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testCreateRecipe() error {
	payload := map[string]interface{}{
		"name":        "Smoke Test Soup",
		"description": "created by the smoke test",
		"ingredients": []map[string]string{
			{"name": "lentils", "quantity": "200", "unit": "g"},
			{"name": "water"},
		},
	}

	resp, err := doRequest("POST", userPath("/recipes"), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.ID == "" {
		return fmt.Errorf("created recipe has no id")
	}
	recipeID = result.ID
	return nil
}

func testListRecipes() error {
	resp, err := doRequest("GET", userPath("/recipes"), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Recipes []struct {
			ID string `json:"id"`
		} `json:"recipes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	for _, r := range result.Recipes {
		if r.ID == recipeID {
			return nil
		}
	}
	return fmt.Errorf("created recipe %s not in list", recipeID)
}

func testGetPlannerWeek() error {
	resp, err := doRequest("GET", userPath("/planner/week"), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Days []struct {
			Date string `json:"date"`
		} `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if len(result.Days) != 7 {
		return fmt.Errorf("expected 7 days, got %d", len(result.Days))
	}
	return nil
}

func testSavePlannerDay() error {
	payload := map[string]interface{}{
		"date":        testDate,
		"breakfastId": recipeID,
	}

	resp, err := doRequest("PUT", userPath("/planner/day"), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Saved int `json:"saved"`
		Days  []struct {
			ID string `json:"id"`
		} `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Saved != 1 {
		return fmt.Errorf("expected 1 saved day, got %d", result.Saved)
	}
	if len(result.Days) == 1 {
		planID = result.Days[0].ID
	}
	return nil
}

func testToggleSlot() error {
	payload := map[string]interface{}{
		"mealType": "lunch",
		"recipeId": recipeID,
	}

	resp, err := doRequest("POST", userPath("/planner/day/"+testDate+"/slot"), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		Lunch *struct {
			ID string `json:"id"`
		} `json:"lunch"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Lunch == nil || result.Lunch.ID != recipeID {
		return fmt.Errorf("lunch slot not assigned")
	}
	return nil
}

func testExportWeekCSV() error {
	resp, err := doRequest("GET", userPath("/planner/week/export.csv"), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(body, []byte("date,")) {
		return fmt.Errorf("unexpected CSV header: %.40s", body)
	}
	return nil
}

func testExportWeekPDF() error {
	resp, err := doRequest("GET", userPath("/planner/week/export.pdf"), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		return fmt.Errorf("response is not a PDF")
	}
	return nil
}

func testDeleteMealPlan() error {
	if planID == "" {
		return nil // nothing to clean up
	}
	resp, err := doRequest("DELETE", userPath("/mealplans/"+planID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusNoContent)
}

func testDeleteRecipe() error {
	resp, err := doRequest("DELETE", userPath("/recipes/"+recipeID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusNoContent)
}

// ---- helpers ----

func userPath(suffix string) string {
	return "/user/" + userID + suffix
}

func doRequest(method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req)

	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
