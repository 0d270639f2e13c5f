package dietsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientClassifyParsesResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/classify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Name != "Lentil Soup" {
			t.Errorf("unexpected recipe name: %q", req.Name)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"diet":"vegan","confidence":0.95}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.Classify(context.Background(), "Lentil Soup", []string{"lentils", "carrot"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Diet != DietVegan || got.Confidence != 0.95 {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestClientClassifyServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.Classify(context.Background(), "Anything", nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestMockClassifier(t *testing.T) {
	t.Parallel()

	c := NewMockClassifier()

	cases := []struct {
		name        string
		ingredients []string
		want        string
	}{
		{"Chicken Curry", []string{"chicken", "rice"}, DietOmnivore},
		{"Grilled Salmon", []string{"salmon", "lemon"}, DietPescatarian},
		{"Cheese Omelette", []string{"eggs", "cheese"}, DietVegetarian},
		{"Lentil Soup", []string{"lentils", "carrot", "onion"}, DietVegan},
		{"BEEF Stew", nil, DietOmnivore}, // case-insensitive on the name
	}

	for _, tc := range cases {
		got, err := c.Classify(context.Background(), tc.name, tc.ingredients)
		if err != nil {
			t.Fatalf("%s: classify: %v", tc.name, err)
		}
		if got.Diet != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got.Diet)
		}
	}
}
