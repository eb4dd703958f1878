package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kharcha/internal/core"
)

// AddExpense assigns a fresh id and creation timestamp and inserts the
// expense at the front of the ledger (most-recent-first ordering).
func (s *Store) AddExpense(ctx context.Context, username string, in core.ExpenseInput) (core.Expense, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:          s.NewID(),
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: in.Description,
		Tags:        in.Tags,
		Split:       in.Split,
		CreatedAt:   s.Now().Format(time.RFC3339),
	}

	data.Expenses = append([]core.Expense{e}, data.Expenses...)
	if err := s.Write(ctx, username, data); err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense added",
		"username", username,
		"id", e.ID,
		"amount", e.Amount,
		"category", e.Category)

	return e, nil
}

// UpdateExpense merges patch fields into the expense with the given id.
// ID and CreatedAt are immutable. Returns ErrNotFound if the id is absent.
func (s *Store) UpdateExpense(ctx context.Context, username, id string, patch core.ExpensePatch) (core.Expense, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Expense{}, err
	}

	idx := -1
	for i := range data.Expenses {
		if data.Expenses[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}

	e := &data.Expenses[idx]
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Tags != nil {
		e.Tags = *patch.Tags
	}
	if patch.Split != nil {
		e.Split = *patch.Split
	}

	if err := s.Write(ctx, username, data); err != nil {
		return core.Expense{}, err
	}
	return *e, nil
}

// DeleteExpense removes the matching expense. Deleting an absent id is a
// no-op, not an error.
func (s *Store) DeleteExpense(ctx context.Context, username, id string) error {
	data, err := s.Read(ctx, username)
	if err != nil {
		return err
	}

	kept := data.Expenses[:0]
	for _, e := range data.Expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	data.Expenses = kept

	return s.Write(ctx, username, data)
}

// MergeExpenses upserts external records into the ledger by id: an incoming
// record with a known id fully replaces the stored one, no field-level merge.
// Each record is normalized first. The resulting ledger is re-sorted
// descending by createdAt string comparison, which matches chronological
// order as long as all timestamps share format and precision. Returns the
// resulting total expense count.
func (s *Store) MergeExpenses(ctx context.Context, username string, incoming []core.Expense) (int, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return 0, err
	}

	now := s.Now()
	index := make(map[string]int, len(data.Expenses))
	merged := make([]core.Expense, 0, len(data.Expenses)+len(incoming))
	for _, e := range data.Expenses {
		index[e.ID] = len(merged)
		merged = append(merged, e)
	}

	for _, e := range incoming {
		n := core.NormalizeImported(e, now, s.NewID)
		if i, ok := index[n.ID]; ok {
			merged[i] = n
		} else {
			index[n.ID] = len(merged)
			merged = append(merged, n)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt > merged[j].CreatedAt
	})

	data.Expenses = merged
	if err := s.Write(ctx, username, data); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Merged external expenses",
		"username", username,
		"incoming", len(incoming),
		"total", len(merged))

	return len(merged), nil
}
