package core

import (
	"sort"
	"strings"
)

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MonthOverview is a compact summary for one YYYY-MM period.
type MonthOverview struct {
	Month      string           `json:"month"`
	Total      float64          `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// ComputeMonthOverview sums expenses dated within the given YYYY-MM period,
// grouped by display category. Categories are sorted by amount descending.
func ComputeMonthOverview(expenses []Expense, month string) MonthOverview {
	overview := MonthOverview{Month: month}
	byCat := make(map[string]float64)
	for _, e := range expenses {
		if !strings.HasPrefix(e.Date, month) || !FiniteAmount(e.Amount) {
			continue
		}
		overview.Total += e.Amount
		byCat[DisplayCategory(e.Category)] += e.Amount
	}
	for name, amount := range byCat {
		overview.ByCategory = append(overview.ByCategory, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		if overview.ByCategory[i].Amount != overview.ByCategory[j].Amount {
			return overview.ByCategory[i].Amount > overview.ByCategory[j].Amount
		}
		return overview.ByCategory[i].Name < overview.ByCategory[j].Name
	})
	return overview
}

// ExpenseFilter narrows a ledger for display. Zero values match everything.
type ExpenseFilter struct {
	Query    string // case-insensitive substring of the description
	Category string
	From     string // YYYY-MM-DD inclusive
	To       string // YYYY-MM-DD inclusive
}

// FilterExpenses returns the expenses matching the filter, preserving order.
func FilterExpenses(expenses []Expense, f ExpenseFilter) []Expense {
	q := strings.ToLower(f.Query)
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if q != "" && !strings.Contains(strings.ToLower(e.Description), q) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.From != "" && e.Date < f.From {
			continue
		}
		if f.To != "" && e.Date > f.To {
			continue
		}
		out = append(out, e)
	}
	return out
}
