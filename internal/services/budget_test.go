package services

import (
	"context"
	"testing"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/store"
)

func seedExpenses(t *testing.T, ctx context.Context, st *store.Store, username string, inputs ...core.ExpenseInput) {
	t.Helper()
	for _, in := range inputs {
		if _, err := st.AddExpense(ctx, username, in); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSpentThisPeriod(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	seedExpenses(t, ctx, st, "alice",
		core.ExpenseInput{Amount: 100, Category: "Food", Date: "2025-01-05"},
		core.ExpenseInput{Amount: 50, Category: "Food", Date: "2025-01-20"},
		core.ExpenseInput{Amount: 200, Category: "Rent", Date: "2025-01-01"},
		core.ExpenseInput{Amount: 999, Category: "Food", Date: "2024-12-31"}, // previous month
	)

	now := time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC)

	total, err := svc.SpentThisPeriod(ctx, "alice", now, "")
	if err != nil {
		t.Fatalf("SpentThisPeriod: %v", err)
	}
	if total != 350 {
		t.Errorf("all categories = %v, want 350", total)
	}

	food, err := svc.SpentThisPeriod(ctx, "alice", now, "Food")
	if err != nil {
		t.Fatalf("SpentThisPeriod: %v", err)
	}
	if food != 150 {
		t.Errorf("Food = %v, want 150", food)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name   string
		budget core.Budget
		spent  float64
		want   float64
	}{
		{"under budget", core.Budget{Amount: 1000}, 250, 0.25},
		{"at budget", core.Budget{Amount: 1000}, 1000, 1},
		{"over budget clamps to 1", core.Budget{Amount: 1000}, 1500, 1},
		{"zero amount reads as 0", core.Budget{Amount: 0}, 500, 0},
		{"negative amount reads as 0", core.Budget{Amount: -10}, 500, 0},
		{"negative spend clamps to 0", core.Budget{Amount: 1000}, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.budget, tt.spent); got != tt.want {
				t.Errorf("Progress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatuses(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	seedExpenses(t, ctx, st, "alice",
		core.ExpenseInput{Amount: 300, Category: "Food", Date: "2025-01-05"},
		core.ExpenseInput{Amount: 200, Category: "Rent", Date: "2025-01-06"},
	)
	if _, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetMonthly, Amount: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetCategory, Category: "Food", Amount: 400}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	statuses, err := svc.Statuses(ctx, "alice", now)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}
	if statuses[0].Spent != 500 || statuses[0].Progress != 0.5 {
		t.Errorf("monthly status = %+v, want spent 500 progress 0.5", statuses[0])
	}
	if statuses[1].Spent != 300 || statuses[1].Progress != 0.75 {
		t.Errorf("category status = %+v, want spent 300 progress 0.75", statuses[1])
	}
}

func TestCheckAlertsFiresOncePerThreshold(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	b, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetMonthly, Amount: 1000})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	// Under 80%: nothing fires.
	seedExpenses(t, ctx, st, "alice", core.ExpenseInput{Amount: 500, Category: "Food", Date: "2025-01-05"})
	alerts, err := svc.CheckAlerts(ctx, "alice", now)
	if err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("alerts at 50%% = %v, want none", alerts)
	}

	// Crossing 80% fires the warn alert once.
	seedExpenses(t, ctx, st, "alice", core.ExpenseInput{Amount: 350, Category: "Food", Date: "2025-01-06"})
	alerts, _ = svc.CheckAlerts(ctx, "alice", now)
	if len(alerts) != 1 || alerts[0].Threshold != AlertThresholdWarn || alerts[0].Budget.ID != b.ID {
		t.Fatalf("alerts at 85%% = %+v, want one warn for %s", alerts, b.ID)
	}
	if alerts[0].Spent != 850 {
		t.Errorf("alert spent = %v, want 850", alerts[0].Spent)
	}
	if want := "Monthly budget at 80%: ₹850.00 spent of ₹1000.00"; alerts[0].Message != want {
		t.Errorf("alert message = %q, want %q", alerts[0].Message, want)
	}

	// Asking again does not re-fire.
	alerts, _ = svc.CheckAlerts(ctx, "alice", now)
	if len(alerts) != 0 {
		t.Errorf("repeated check re-fired: %v", alerts)
	}

	// Crossing 100% fires the exceeded alert once.
	seedExpenses(t, ctx, st, "alice", core.ExpenseInput{Amount: 200, Category: "Food", Date: "2025-01-07"})
	alerts, _ = svc.CheckAlerts(ctx, "alice", now)
	if len(alerts) != 1 || alerts[0].Threshold != AlertThresholdExceeded {
		t.Fatalf("alerts at 105%% = %+v, want one exceeded", alerts)
	}
	if want := "Monthly budget exceeded: ₹1050.00 spent of ₹1000.00"; alerts[0].Message != want {
		t.Errorf("alert message = %q, want %q", alerts[0].Message, want)
	}
	alerts, _ = svc.CheckAlerts(ctx, "alice", now)
	if len(alerts) != 0 {
		t.Errorf("repeated check re-fired: %v", alerts)
	}
}

func TestAlertMessageCategoryLabel(t *testing.T) {
	b := core.Budget{Type: core.BudgetCategory, Category: "Food", Amount: 400}
	a := newAlert(b, AlertThresholdWarn, 350, core.USD)
	if want := "Food budget at 80%: $350.00 spent of $400.00"; a.Message != want {
		t.Errorf("Message = %q, want %q", a.Message, want)
	}
}

func TestCheckAlertsStraightTo100SkipsWarn(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	if _, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetMonthly, Amount: 100}); err != nil {
		t.Fatal(err)
	}
	seedExpenses(t, ctx, st, "alice", core.ExpenseInput{Amount: 150, Category: "Food", Date: "2025-01-05"})

	now := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	alerts, err := svc.CheckAlerts(ctx, "alice", now)
	if err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Threshold != AlertThresholdExceeded {
		t.Errorf("alerts = %+v, want single exceeded alert", alerts)
	}
}

func TestCheckAlertsResetsNextMonth(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	if _, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetMonthly, Amount: 100}); err != nil {
		t.Fatal(err)
	}
	seedExpenses(t, ctx, st, "alice",
		core.ExpenseInput{Amount: 150, Category: "Food", Date: "2025-01-05"},
		core.ExpenseInput{Amount: 150, Category: "Food", Date: "2025-02-05"},
	)

	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	if alerts, _ := svc.CheckAlerts(ctx, "alice", jan); len(alerts) != 1 {
		t.Fatal("expected january alert")
	}

	// A new month gets a fresh flag namespace.
	feb := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)
	alerts, err := svc.CheckAlerts(ctx, "alice", feb)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Errorf("february alerts = %v, want 1", alerts)
	}
}

func TestCheckAlertsZeroAmountBudgetNeverFires(t *testing.T) {
	ctx := context.Background()
	st, kv := newTestFixture(t)
	svc := NewBudgetService(st, kv, nil)

	if _, err := st.AddBudget(ctx, "alice", core.BudgetInput{Type: core.BudgetMonthly, Amount: 0}); err != nil {
		t.Fatal(err)
	}
	seedExpenses(t, ctx, st, "alice", core.ExpenseInput{Amount: 500, Category: "Food", Date: "2025-01-05"})

	alerts, err := svc.CheckAlerts(ctx, "alice", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 0 {
		t.Errorf("zero-amount budget fired: %v", alerts)
	}
}
