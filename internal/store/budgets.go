package store

import (
	"context"
	"fmt"
	"time"

	"kharcha/internal/core"
)

// Budgets returns the user's budget definitions.
func (s *Store) Budgets(ctx context.Context, username string) ([]core.Budget, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return nil, err
	}
	return data.Budgets, nil
}

// AddBudget creates a budget of either variant.
func (s *Store) AddBudget(ctx context.Context, username string, in core.BudgetInput) (core.Budget, error) {
	b := core.Budget{
		ID:        s.NewID(),
		Type:      in.Type,
		Amount:    in.Amount,
		CreatedAt: s.Now().Format(time.RFC3339),
	}
	if in.Type == core.BudgetCategory {
		b.Category = in.Category
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}

	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Budget{}, err
	}

	data.Budgets = append(data.Budgets, b)
	if err := s.Write(ctx, username, data); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// UpdateBudget patches a budget's amount or category. The variant tag is
// immutable.
func (s *Store) UpdateBudget(ctx context.Context, username, id string, patch core.BudgetPatch) (core.Budget, error) {
	data, err := s.Read(ctx, username)
	if err != nil {
		return core.Budget{}, err
	}

	idx := -1
	for i := range data.Budgets {
		if data.Budgets[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}

	b := &data.Budgets[idx]
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if patch.Category != nil && b.Type == core.BudgetCategory {
		b.Category = *patch.Category
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}

	if err := s.Write(ctx, username, data); err != nil {
		return core.Budget{}, err
	}
	return *b, nil
}

// DeleteBudget removes a budget; absent ids are a no-op.
func (s *Store) DeleteBudget(ctx context.Context, username, id string) error {
	data, err := s.Read(ctx, username)
	if err != nil {
		return err
	}

	kept := data.Budgets[:0]
	for _, b := range data.Budgets {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	data.Budgets = kept

	return s.Write(ctx, username, data)
}
