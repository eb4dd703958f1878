package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/storage"
	"kharcha/internal/store"
)

func newTestFixture(t *testing.T) (*store.Store, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	s := store.New(kv, nil, nil, nil)
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, kv
}

func TestRecurringRunMaterializesDueTemplates(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestFixture(t)
	svc := NewRecurringService(st, nil)

	if _, err := st.AddTemplate(ctx, "alice", core.TemplateInput{
		Amount:      500,
		Category:    "Rent",
		Description: "monthly rent",
		DayOfMonth:  1,
		Tags:        []string{"fixed"},
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	created, err := svc.Run(ctx, "alice", now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	data, _ := st.Read(ctx, "alice")
	if len(data.Expenses) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(data.Expenses))
	}
	e := data.Expenses[0]
	if e.Amount != 500 || e.Category != "Rent" || e.Date != "2025-01-01" {
		t.Errorf("unexpected materialized expense: %+v", e)
	}
	if data.RecurringTemplates[0].LastRunMonth != "2025-01" {
		t.Errorf("lastRunMonth = %q, want 2025-01", data.RecurringTemplates[0].LastRunMonth)
	}
}

func TestRecurringRunIsIdempotentPerMonth(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestFixture(t)
	svc := NewRecurringService(st, nil)

	if _, err := st.AddTemplate(ctx, "alice", core.TemplateInput{Amount: 100, Category: "Other", DayOfMonth: 5}); err != nil {
		t.Fatal(err)
	}

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	if created, _ := svc.Run(ctx, "alice", jan); created != 1 {
		t.Fatal("first run should create one expense")
	}

	// Same month, later day: nothing new.
	janLater := time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC)
	if created, _ := svc.Run(ctx, "alice", janLater); created != 0 {
		t.Error("second run in the same month must create nothing")
	}

	// Next month: one more.
	feb := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	if created, _ := svc.Run(ctx, "alice", feb); created != 1 {
		t.Error("new month should materialize again")
	}

	data, _ := st.Read(ctx, "alice")
	if len(data.Expenses) != 2 {
		t.Errorf("ledger size = %d, want 2", len(data.Expenses))
	}
}

func TestRecurringRunClampsDayToMonthLength(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestFixture(t)
	svc := NewRecurringService(st, nil)

	if _, err := st.AddTemplate(ctx, "alice", core.TemplateInput{Amount: 50, Category: "Other", DayOfMonth: 31}); err != nil {
		t.Fatal(err)
	}

	april := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Run(ctx, "alice", april); err != nil {
		t.Fatal(err)
	}

	data, _ := st.Read(ctx, "alice")
	if data.Expenses[0].Date != "2025-04-30" {
		t.Errorf("date = %q, want 2025-04-30 (clamped)", data.Expenses[0].Date)
	}
}

func TestRecurringRunSkipsDisabledTemplates(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestFixture(t)
	svc := NewRecurringService(st, nil)

	disabled := false
	if _, err := st.AddTemplate(ctx, "alice", core.TemplateInput{Amount: 50, Category: "Other", DayOfMonth: 1, Enabled: &disabled}); err != nil {
		t.Fatal(err)
	}

	created, err := svc.Run(ctx, "alice", time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 for disabled template", created)
	}
}

func TestRecurringRunNoTemplates(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestFixture(t)
	svc := NewRecurringService(st, nil)

	created, err := svc.Run(ctx, "alice", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0", created)
	}
}
