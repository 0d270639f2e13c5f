package export

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/KRoses96/Neverita/internal/planner"
	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/storage/memory"
	"github.com/KRoses96/Neverita/internal/userctx"
)

const testUser = "export-tester"

func seedWeek(t *testing.T, mem *memory.MemoryStorage) {
	t.Helper()
	ctx := context.Background()

	soup := storage.Recipe{ID: uuid.New(), OwnerUserID: testUser, Name: "Lentil Soup"}
	if err := mem.CreateRecipe(ctx, &soup); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	soupID := soup.ID
	plan := storage.MealPlanRow{
		ID:          uuid.New(),
		OwnerUserID: testUser,
		Date:        "2026-08-26",
		LunchID:     &soupID,
	}
	if err := mem.CreateMealPlan(ctx, &plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
}

func testWindow() planner.Window {
	return planner.WindowFrom(time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC))
}

func TestWeekPDF(t *testing.T) {
	mem := memory.New()
	seedWeek(t, mem)
	gen := NewGenerator(planner.NewService(mem, mem))
	ctx := userctx.WithUserID(context.Background(), testUser)

	data, err := gen.Week(ctx, testWindow(), FormatPDF)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF")
	}
}

func TestWeekCSVListsEveryDay(t *testing.T) {
	mem := memory.New()
	seedWeek(t, mem)
	gen := NewGenerator(planner.NewService(mem, mem))
	ctx := userctx.WithUserID(context.Background(), testUser)

	data, err := gen.Week(ctx, testWindow(), FormatCSV)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header plus 7 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,breakfast,lunch,dinner" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(string(data), "2026-08-26,,Lentil Soup,") {
		t.Fatalf("planned day missing from CSV:\n%s", data)
	}
}

func TestWeekRejectsUnknownFormat(t *testing.T) {
	mem := memory.New()
	gen := NewGenerator(planner.NewService(mem, mem))
	ctx := userctx.WithUserID(context.Background(), testUser)

	if _, err := gen.Week(ctx, testWindow(), Format("xlsx")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestHandleWeekPDF(t *testing.T) {
	mem := memory.New()
	seedWeek(t, mem)
	handlers := NewHandlers(NewGenerator(planner.NewService(mem, mem)))

	req := httptest.NewRequest(http.MethodGet, "/planner/week/export.pdf?start=2026-08-24", nil)
	req = req.WithContext(userctx.WithUserID(req.Context(), testUser))
	rec := httptest.NewRecorder()
	handlers.HandleWeekPDF(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "meal-plan-2026-08-24.pdf") {
		t.Fatalf("unexpected disposition %s", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body does not look like a PDF")
	}
}

func TestHandleWeekPDFRequiresUser(t *testing.T) {
	mem := memory.New()
	handlers := NewHandlers(NewGenerator(planner.NewService(mem, mem)))

	req := httptest.NewRequest(http.MethodGet, "/planner/week/export.pdf", nil)
	rec := httptest.NewRecorder()
	handlers.HandleWeekPDF(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
