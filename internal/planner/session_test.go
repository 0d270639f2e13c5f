package planner

import (
	"context"
	"testing"
	"time"

	"github.com/KRoses96/Neverita/internal/storage"
	"github.com/KRoses96/Neverita/internal/storage/memory"
)

// blockingPlans holds one date's lookup until released, signalling on
// entered so the test can interleave deterministically.
type blockingPlans struct {
	storage.MealPlansStorage
	blockDate string
	entered   chan struct{}
	release   chan struct{}
}

func (b *blockingPlans) GetMealPlanByDate(ctx context.Context, ownerUserID, date string) (*storage.MealPlanRow, error) {
	if date == b.blockDate {
		b.entered <- struct{}{}
		<-b.release
	}
	return b.MealPlansStorage.GetMealPlanByDate(ctx, ownerUserID, date)
}

func TestSessionNavigateShiftsWindow(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem)
	ctx := testContext()
	session := NewSession(svc, Day(date(2026, time.September, 1)))

	state, err := session.Navigate(ctx, Next)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if state.Days[0].Date != "2026-09-02" {
		t.Fatalf("expected window on 2026-09-02, got %s", state.Days[0].Date)
	}
	if got := session.Window().StartDate(); got != "2026-09-02" {
		t.Fatalf("session window not advanced: %s", got)
	}
}

func TestSessionDiscardsStaleLoad(t *testing.T) {
	mem := memory.New()
	blocking := &blockingPlans{
		MealPlansStorage: mem,
		blockDate:        "2026-09-01",
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	svc := NewService(blocking, mem)
	ctx := testContext()
	session := NewSession(svc, Day(date(2026, time.September, 1)))

	// First load hangs inside the store.
	firstDone := make(chan *PlanState)
	go func() {
		state, err := session.Load(ctx)
		if err != nil {
			t.Errorf("stale load: %v", err)
		}
		firstDone <- state
	}()
	<-blocking.entered

	// The user navigates on while the first load is in flight.
	state, err := session.Navigate(ctx, Next)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if state.Days[0].Date != "2026-09-02" {
		t.Fatalf("expected 2026-09-02, got %s", state.Days[0].Date)
	}

	// The late response must not win back the session.
	close(blocking.release)
	returned := <-firstDone
	if returned.Days[0].Date != "2026-09-02" {
		t.Fatalf("stale load overwrote the session: %s", returned.Days[0].Date)
	}
	if got := session.State().Days[0].Date; got != "2026-09-02" {
		t.Fatalf("session kept stale state: %s", got)
	}
}

func TestSessionSaveBeforeLoadIsRejected(t *testing.T) {
	mem := memory.New()
	session := NewSession(NewService(mem, mem), Day(date(2026, time.September, 1)))

	if _, err := session.Save(testContext()); err == nil {
		t.Fatal("save before any load should fail")
	}
}
