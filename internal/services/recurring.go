// Package services derives results from the user data store: recurring
// materialization, budget progress and alerting.
package services

import (
	"context"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/store"
)

// RecurringService materializes due templates into ledger expenses. It is
// invoked opportunistically (session start, worker sweep), never on a timer
// of its own; per-month idempotence makes repeated invocation safe.
type RecurringService struct {
	store  *store.Store
	logger *log.Logger
}

func NewRecurringService(st *store.Store, logger *log.Logger) *RecurringService {
	if logger == nil {
		logger = log.New(0, "recurring")
	}
	return &RecurringService{store: st, logger: logger}
}

// Run materializes every enabled template that has not yet run in the month
// of now. Each template produces at most one expense per calendar month,
// dated at its day-of-month clamped to the month's actual length. Returns
// the number of expenses created in this invocation.
func (s *RecurringService) Run(ctx context.Context, username string, now time.Time) (int, error) {
	data, err := s.store.Read(ctx, username)
	if err != nil {
		return 0, err
	}
	if len(data.RecurringTemplates) == 0 {
		return 0, nil
	}

	month := core.MonthKey(now)
	created := 0

	for i := range data.RecurringTemplates {
		t := &data.RecurringTemplates[i]
		if !t.Enabled || t.LastRunMonth == month {
			continue
		}

		day := core.ClampDayOfMonth(t.DayOfMonth, now.Year(), now.Month())
		date := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())

		e := core.Expense{
			ID:          s.store.NewID(),
			Amount:      t.Amount,
			Category:    t.Category,
			Date:        core.DateKey(date),
			Description: t.Description,
			Tags:        t.Tags,
			Split:       t.Split,
			CreatedAt:   s.store.Now().Format(time.RFC3339),
		}
		data.Expenses = append([]core.Expense{e}, data.Expenses...)
		t.LastRunMonth = month
		created++

		s.logger.InfoContext(ctx, "Materialized recurring expense",
			"username", username,
			"template_id", t.ID,
			"date", e.Date,
			"amount", e.Amount)
	}

	if created == 0 {
		return 0, nil
	}
	if err := s.store.Write(ctx, username, data); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Recurring run complete",
		"username", username,
		"month", month,
		"created", created)

	return created, nil
}
