package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/core"
)

// ExpensesToJSON serializes the ledger as a pretty-printed JSON array with
// stable field order.
func ExpensesToJSON(expenses []core.Expense) ([]byte, error) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	out, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal expenses: %w", err)
	}
	return out, nil
}

// looseExpense accepts the field shapes found in the wild: amounts as
// numbers or strings, tags as an array or a comma-separated string.
type looseExpense struct {
	ID          string            `json:"id"`
	Amount      any               `json:"amount"`
	Category    string            `json:"category"`
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Tags        any               `json:"tags"`
	Split       []core.SplitEntry `json:"split"`
	CreatedAt   string            `json:"createdAt"`
}

// ExpensesFromJSON coerces a JSON document into expense records. Non-array
// input yields an empty result; elements whose amount does not coerce to a
// finite number are dropped; missing ids get fresh ones. Undecodable JSON is
// ErrMalformedInput.
func ExpensesFromJSON(data []byte) ([]core.Expense, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid json", core.ErrMalformedInput)
	}

	var loose []looseExpense
	if err := json.Unmarshal(data, &loose); err != nil {
		// Valid JSON that is not an array of objects: tolerated as empty.
		return []core.Expense{}, nil
	}

	now := time.Now()
	out := make([]core.Expense, 0, len(loose))
	for _, l := range loose {
		amount, ok := coerceAmount(l.Amount)
		if !ok {
			continue
		}

		e := core.Expense{
			ID:          l.ID,
			Amount:      amount,
			Category:    l.Category,
			Date:        l.Date,
			Description: l.Description,
			Tags:        coerceTags(l.Tags),
			Split:       l.Split,
			CreatedAt:   l.CreatedAt,
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Category == "" {
			e.Category = core.CategoryFallback
		}
		if e.Date == "" {
			e.Date = core.DateKey(now)
		}
		if e.CreatedAt == "" {
			e.CreatedAt = now.Format(time.RFC3339)
		}
		out = append(out, e)
	}
	return out, nil
}

func coerceAmount(v any) (float64, bool) {
	switch a := v.(type) {
	case float64:
		return a, core.FiniteAmount(a)
	case string:
		// String amounts go through the lenient parser, which also takes
		// comma decimal separators and rounds to two places.
		f, err := core.ParseAmount(a)
		return f, err == nil && core.FiniteAmount(f)
	default:
		return 0, false
	}
}

func coerceTags(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil
	}

	var tags []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}
