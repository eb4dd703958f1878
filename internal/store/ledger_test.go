package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"kharcha/internal/core"
)

func TestAddExpense(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, err := s.AddExpense(ctx, "alice", core.ExpenseInput{Amount: 120, Category: "Food", Date: "2025-01-10"})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if first.ID == "" || first.CreatedAt != testNow.Format(time.RFC3339) {
		t.Errorf("expected assigned id and timestamp, got %+v", first)
	}

	second, err := s.AddExpense(ctx, "alice", core.ExpenseInput{Amount: 40, Category: "Transport", Date: "2025-01-11"})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	data, _ := s.Read(ctx, "alice")
	if len(data.Expenses) != 2 {
		t.Fatalf("ledger size = %d, want 2", len(data.Expenses))
	}
	// Most recent first.
	if data.Expenses[0].ID != second.ID || data.Expenses[1].ID != first.ID {
		t.Errorf("expected newest-first order, got %v then %v", data.Expenses[0].ID, data.Expenses[1].ID)
	}
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e, _ := s.AddExpense(ctx, "alice", core.ExpenseInput{Amount: 120, Category: "Food", Date: "2025-01-10"})

	amount := 99.5
	desc := "corrected"
	got, err := s.UpdateExpense(ctx, "alice", e.ID, core.ExpensePatch{Amount: &amount, Description: &desc})
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if got.Amount != 99.5 || got.Description != "corrected" {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Category != "Food" {
		t.Errorf("unpatched field changed: %q", got.Category)
	}
	if got.ID != e.ID || got.CreatedAt != e.CreatedAt {
		t.Error("id and createdAt must be immutable")
	}
}

func TestUpdateExpenseNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	amount := 1.0
	_, err := s.UpdateExpense(ctx, "alice", "no-such-id", core.ExpensePatch{Amount: &amount})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	e, _ := s.AddExpense(ctx, "alice", core.ExpenseInput{Amount: 120, Category: "Food", Date: "2025-01-10"})

	if err := s.DeleteExpense(ctx, "alice", e.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	data, _ := s.Read(ctx, "alice")
	if len(data.Expenses) != 0 {
		t.Errorf("ledger size = %d, want 0", len(data.Expenses))
	}

	// Absent id is a no-op, not an error.
	if err := s.DeleteExpense(ctx, "alice", "no-such-id"); err != nil {
		t.Errorf("delete of absent id: %v", err)
	}
}

func TestMergeExpensesUpsertsByID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	existing, _ := s.AddExpense(ctx, "alice", core.ExpenseInput{Amount: 100, Category: "Food", Date: "2025-01-05"})

	incoming := []core.Expense{
		// Same id: full replacement, no field merge.
		{ID: existing.ID, Amount: 250, Category: "Rent", Date: "2025-01-06", CreatedAt: "2025-01-06T00:00:00Z"},
		// New record.
		{ID: "imported-1", Amount: 30, Category: "Transport", Date: "2025-01-07", CreatedAt: "2025-01-07T00:00:00Z"},
	}

	total, err := s.MergeExpenses(ctx, "alice", incoming)
	if err != nil {
		t.Fatalf("MergeExpenses: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	data, _ := s.Read(ctx, "alice")
	byID := make(map[string]core.Expense)
	for _, e := range data.Expenses {
		byID[e.ID] = e
	}
	replaced := byID[existing.ID]
	if replaced.Amount != 250 || replaced.Category != "Rent" {
		t.Errorf("incoming record should fully replace stored one, got %+v", replaced)
	}
}

func TestMergeExpensesSortsByCreatedAtDescending(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	incoming := []core.Expense{
		{ID: "a", Amount: 1, Category: "Food", Date: "2025-01-01", CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: "c", Amount: 1, Category: "Food", Date: "2025-01-03", CreatedAt: "2025-01-03T00:00:00Z"},
		{ID: "b", Amount: 1, Category: "Food", Date: "2025-01-02", CreatedAt: "2025-01-02T00:00:00Z"},
	}
	if _, err := s.MergeExpenses(ctx, "alice", incoming); err != nil {
		t.Fatalf("MergeExpenses: %v", err)
	}

	data, _ := s.Read(ctx, "alice")
	wantOrder := []string{"c", "b", "a"}
	for i, id := range wantOrder {
		if data.Expenses[i].ID != id {
			t.Errorf("expenses[%d].ID = %q, want %q", i, data.Expenses[i].ID, id)
		}
	}
}

func TestMergeExpensesNormalizesIncoming(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	incoming := []core.Expense{{Amount: 42}} // no id, category, date or createdAt
	if _, err := s.MergeExpenses(ctx, "alice", incoming); err != nil {
		t.Fatalf("MergeExpenses: %v", err)
	}

	data, _ := s.Read(ctx, "alice")
	if len(data.Expenses) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(data.Expenses))
	}
	got := data.Expenses[0]
	if got.ID == "" || got.Category != core.CategoryFallback || got.Date != "2025-01-15" {
		t.Errorf("incoming record not normalized: %+v", got)
	}
}
