package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/store"
)

// Alert thresholds, in percent of the budget amount.
const (
	AlertThresholdWarn     = 80
	AlertThresholdExceeded = 100
)

// Alert reports a budget crossing a threshold for the first time this month.
type Alert struct {
	Budget    core.Budget `json:"budget"`
	Threshold int         `json:"threshold"` // 80 or 100
	Spent     float64     `json:"spent"`
	Message   string      `json:"message"` // display string in the user's currency
}

// BudgetStatus pairs a budget with its current-month spend for display.
type BudgetStatus struct {
	Budget   core.Budget `json:"budget"`
	Spent    float64     `json:"spent"`
	Progress float64     `json:"progress"` // clamped to [0, 1]
}

// BudgetService computes period-to-date spend against budget definitions.
// "Period" is always the calendar month containing now, so a budget's
// progress changes meaning as time passes.
type BudgetService struct {
	store  *store.Store
	kv     storage.KV // alert flags live beside the user records
	logger *log.Logger
}

func NewBudgetService(st *store.Store, kv storage.KV, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.New(0, "budget")
	}
	return &BudgetService{store: st, kv: kv, logger: logger}
}

// SpentThisPeriod sums expense amounts whose date falls in the month of now,
// optionally filtered to one category. Category "" means all categories.
func (s *BudgetService) SpentThisPeriod(ctx context.Context, username string, now time.Time, category string) (float64, error) {
	data, err := s.store.Read(ctx, username)
	if err != nil {
		return 0, err
	}

	month := core.MonthKey(now)
	var total float64
	for _, e := range data.Expenses {
		if !strings.HasPrefix(e.Date, month) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		if core.FiniteAmount(e.Amount) {
			total += e.Amount
		}
	}
	return total, nil
}

// Progress is spent/amount clamped to [0, 1]. A zero-amount budget reads as
// 0% rather than dividing by zero.
func Progress(b core.Budget, spent float64) float64 {
	if b.Amount <= 0 {
		return 0
	}
	p := spent / b.Amount
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Statuses returns every budget with its current spend and clamped progress.
func (s *BudgetService) Statuses(ctx context.Context, username string, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.store.Budgets(ctx, username)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.spentFor(ctx, username, now, b)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, BudgetStatus{Budget: b, Spent: spent, Progress: Progress(b, spent)})
	}
	return statuses, nil
}

// CheckAlerts fires at most one notification per (budget, threshold) per
// calendar month: once when progress first crosses 80% and once when it
// first crosses 100%. Firing is gated by persisted flags, so querying
// repeatedly never re-fires. Crossing straight to 100% fires only the 100%
// alert.
func (s *BudgetService) CheckAlerts(ctx context.Context, username string, now time.Time) ([]Alert, error) {
	budgets, err := s.store.Budgets(ctx, username)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.Preferences(ctx, username)
	if err != nil {
		return nil, err
	}

	month := core.MonthKey(now)
	var alerts []Alert

	for _, b := range budgets {
		spent, err := s.spentFor(ctx, username, now, b)
		if err != nil {
			return nil, err
		}

		var ratio float64
		if b.Amount > 0 {
			ratio = spent / b.Amount
		}

		switch {
		case ratio >= 1:
			fired, err := s.fireOnce(ctx, username, month, b.ID, AlertThresholdExceeded)
			if err != nil {
				return nil, err
			}
			if fired {
				alerts = append(alerts, newAlert(b, AlertThresholdExceeded, spent, prefs.Currency))
			}
		case ratio >= 0.8:
			fired, err := s.fireOnce(ctx, username, month, b.ID, AlertThresholdWarn)
			if err != nil {
				return nil, err
			}
			if fired {
				alerts = append(alerts, newAlert(b, AlertThresholdWarn, spent, prefs.Currency))
			}
		}
	}

	if len(alerts) > 0 {
		s.logger.InfoContext(ctx, "Budget alerts fired",
			"username", username,
			"month", month,
			"count", len(alerts))
	}
	return alerts, nil
}

func newAlert(b core.Budget, threshold int, spent float64, currency core.CurrencyCode) Alert {
	label := "Monthly budget"
	if b.Type == core.BudgetCategory {
		label = b.Category + " budget"
	}
	var msg string
	if threshold >= AlertThresholdExceeded {
		msg = fmt.Sprintf("%s exceeded: %s spent of %s",
			label, core.FormatAmount(spent, currency), core.FormatAmount(b.Amount, currency))
	} else {
		msg = fmt.Sprintf("%s at %d%%: %s spent of %s",
			label, threshold, core.FormatAmount(spent, currency), core.FormatAmount(b.Amount, currency))
	}
	return Alert{Budget: b, Threshold: threshold, Spent: spent, Message: msg}
}

func (s *BudgetService) spentFor(ctx context.Context, username string, now time.Time, b core.Budget) (float64, error) {
	switch b.Type {
	case core.BudgetMonthly:
		return s.SpentThisPeriod(ctx, username, now, "")
	case core.BudgetCategory:
		return s.SpentThisPeriod(ctx, username, now, b.Category)
	default:
		return 0, fmt.Errorf("%w: unknown budget type %q", core.ErrMalformedInput, b.Type)
	}
}

// fireOnce sets the alert flag and reports whether it was newly set.
func (s *BudgetService) fireOnce(ctx context.Context, username, month, budgetID string, threshold int) (bool, error) {
	key := store.AlertKey(username, month, budgetID, threshold)
	_, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read alert flag: %v", core.ErrStorageUnavailable, err)
	}
	if ok {
		return false, nil
	}
	if err := s.kv.Set(ctx, key, "1"); err != nil {
		return false, fmt.Errorf("%w: write alert flag: %v", core.ErrStorageUnavailable, err)
	}
	return true, nil
}
