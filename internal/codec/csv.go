// Package codec serializes expense collections to and from the CSV and JSON
// wire formats. Import is tolerant: malformed rows are skipped, never
// aborting the batch; persistence happens through the ledger merge.
package codec

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/core"
)

// Column order of the CSV wire format. tags uses "|" as sub-delimiter and
// split holds a JSON-encoded array.
var csvHeader = []string{"id", "amount", "category", "date", "description", "createdAt", "tags", "split"}

// ExpensesToCSV writes the ledger in the fixed column order with RFC-4180
// quoting (encoding/csv quotes any field containing comma, quote or newline).
func ExpensesToCSV(expenses []core.Expense) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range expenses {
		split := ""
		if len(e.Split) > 0 {
			raw, err := json.Marshal(e.Split)
			if err != nil {
				return "", fmt.Errorf("marshal split for %s: %w", e.ID, err)
			}
			split = string(raw)
		}

		row := []string{
			e.ID,
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			e.Category,
			e.Date,
			e.Description,
			e.CreatedAt,
			strings.Join(e.Tags, "|"),
			split,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row for %s: %w", e.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return sb.String(), nil
}

// ExpensesFromCSV parses the wire format back into expense records. Columns
// are located by header name, so reordered or extra columns are tolerated;
// missing values default (category to "Other", date and createdAt to now,
// absent id to a fresh one). Rows with a non-finite amount or undecodable
// split are dropped silently.
func ExpensesFromCSV(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %v", core.ErrMalformedInput, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	now := time.Now()
	var out []core.Expense
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Row-local failure: one bad row never aborts the batch.
			continue
		}

		amount, err := strconv.ParseFloat(get(row, "amount"), 64)
		if err != nil || !core.FiniteAmount(amount) {
			continue
		}

		var split []core.SplitEntry
		if raw := get(row, "split"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &split); err != nil {
				continue
			}
		}

		var tags []string
		if raw := get(row, "tags"); raw != "" {
			for _, t := range strings.Split(raw, "|") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}

		e := core.Expense{
			ID:          get(row, "id"),
			Amount:      amount,
			Category:    get(row, "category"),
			Date:        get(row, "date"),
			Description: get(row, "description"),
			Tags:        tags,
			Split:       split,
			CreatedAt:   get(row, "createdAt"),
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

	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}
