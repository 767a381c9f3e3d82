package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

func TestSaveAndListPlans(t *testing.T) {
	backing := store.NewMemoryStore(nil)
	l := NewLedger(backing, nil)
	ctx := context.Background()

	older := &plan.Document{Title: "Plano antigo", Tasks: []plan.Task{{Title: "A", Priority: plan.PriorityMedium}}}
	newer := &plan.Document{Title: "Plano novo", Tasks: []plan.Task{{Title: "B", Priority: plan.PriorityHigh}}}

	l.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	if !l.SavePlan(ctx, older) {
		t.Fatal("SavePlan failed for older plan")
	}
	l.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	if !l.SavePlan(ctx, newer) {
		t.Fatal("SavePlan failed for newer plan")
	}

	records := l.ListPlans(ctx, 10)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Title != "Plano novo" {
		t.Errorf("records[0] = %q, want most recent first", records[0].Title)
	}

	// The stored JSON must round-trip back into the plan document.
	var decoded plan.Document
	if err := json.Unmarshal([]byte(records[0].JSON), &decoded); err != nil {
		t.Fatalf("stored plan JSON is invalid: %v", err)
	}
	if decoded.Tasks[0].Priority != plan.PriorityHigh {
		t.Errorf("decoded priority = %q", decoded.Tasks[0].Priority)
	}
}

func TestSavePlanOffline(t *testing.T) {
	l := NewLedger(nil, nil)
	if l.SavePlan(context.Background(), &plan.Document{Title: "X"}) {
		t.Error("SavePlan must return false without a backing store")
	}
	if got := l.ListPlans(context.Background(), 5); got != nil {
		t.Errorf("ListPlans offline = %v, want nil", got)
	}
}
