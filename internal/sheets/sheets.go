// Package sheets is an optional one-way export sink: it appends expense rows
// to a Google spreadsheet. It never reads back; the local store stays the
// source of truth.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kharcha/internal/core"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates an exporter using service account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Expenses"
	}

	credentialsJSON, err := loadCredentials(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func loadCredentials(ctx context.Context) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	slog.DebugContext(ctx, "Loaded sheets credentials from file", "path", file, "size", len(raw))
	return raw, nil
}

// Append adds one row per expense, in the same column order as the CSV wire
// format, prefixed by the owning username.
func (x *Exporter) Append(ctx context.Context, username string, expenses []core.Expense) error {
	if x.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		split := ""
		if len(e.Split) > 0 {
			raw, err := json.Marshal(e.Split)
			if err != nil {
				return fmt.Errorf("marshal split for %s: %w", e.ID, err)
			}
			split = string(raw)
		}
		rows = append(rows, []any{
			username, e.ID, e.Amount, e.Category, e.Date, e.Description,
			e.CreatedAt, strings.Join(e.Tags, "|"), split,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:I", x.sheetName)
	_, err := x.svc.Spreadsheets.Values.Append(x.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", x.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported expenses to sheet",
		"username", username,
		"rows", len(rows),
		"sheet", x.sheetName)
	return nil
}
