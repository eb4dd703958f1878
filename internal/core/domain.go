package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	// CategoryFallback is what consumers display for categories they do not
	// recognize, and the default for imported records missing one. Stored
	// values are never rewritten to it.
	CategoryFallback = "Other"

	// DefaultThreshold is the high-expense alert cutoff for new users,
	// expressed in the user's currency units.
	DefaultThreshold = 5000
)

var (
	ErrConflict           = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrMalformedInput     = errors.New("malformed input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// SplitEntry assigns a share of an expense to a person. Shares are free-form
// and need not sum to the expense amount.
type SplitEntry struct {
	Who   string  `json:"who"`
	Share float64 `json:"share"`
}

// Expense is a single ledger entry. ID and CreatedAt are assigned once at
// creation and never change; CreatedAt doubles as the merge-recency key.
type Expense struct {
	ID          string       `json:"id"`
	Amount      float64      `json:"amount"`
	Category    string       `json:"category"`
	Date        string       `json:"date"` // YYYY-MM-DD
	Description string       `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Split       []SplitEntry `json:"split,omitempty"`
	CreatedAt   string       `json:"createdAt"` // RFC 3339
}

// ExpenseInput carries the caller-supplied fields of a new expense.
type ExpenseInput struct {
	Amount      float64      `json:"amount"`
	Category    string       `json:"category"`
	Date        string       `json:"date"`
	Description string       `json:"description,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Split       []SplitEntry `json:"split,omitempty"`
}

// ExpensePatch updates individual expense fields. Nil fields are left as-is.
// ID and CreatedAt are not patchable.
type ExpensePatch struct {
	Amount      *float64      `json:"amount,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Date        *string       `json:"date,omitempty"`
	Description *string       `json:"description,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Split       *[]SplitEntry `json:"split,omitempty"`
}

// Preferences holds per-user settings, created with defaults at signup.
type Preferences struct {
	Currency  CurrencyCode `json:"currency"`
	Threshold float64      `json:"threshold"`
	Theme     string       `json:"theme,omitempty"`
	Locale    string       `json:"locale,omitempty"`
}

// PreferencesPatch partially updates preferences.
type PreferencesPatch struct {
	Currency  *CurrencyCode `json:"currency,omitempty"`
	Threshold *float64      `json:"threshold,omitempty"`
	Theme     *string       `json:"theme,omitempty"`
	Locale    *string       `json:"locale,omitempty"`
}

// DefaultPreferences are assigned at signup and when a user record self-heals.
func DefaultPreferences() Preferences {
	return Preferences{Currency: INR, Threshold: DefaultThreshold, Theme: "system"}
}

// RecurringTemplate materializes into at most one expense per calendar month.
type RecurringTemplate struct {
	ID           string       `json:"id"`
	Amount       float64      `json:"amount"`
	Category     string       `json:"category"`
	Description  string       `json:"description,omitempty"`
	DayOfMonth   int          `json:"dayOfMonth"` // 1-31, clamped to the target month at run time
	Tags         []string     `json:"tags,omitempty"`
	Split        []SplitEntry `json:"split,omitempty"`
	Enabled      bool         `json:"enabled"`
	LastRunMonth string       `json:"lastRunMonth,omitempty"` // YYYY-MM
}

// TemplateInput carries the caller-supplied fields of a new recurring template.
type TemplateInput struct {
	Amount      float64      `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description,omitempty"`
	DayOfMonth  int          `json:"dayOfMonth"`
	Tags        []string     `json:"tags,omitempty"`
	Split       []SplitEntry `json:"split,omitempty"`
	Enabled     *bool        `json:"enabled,omitempty"` // default true
}

// TemplatePatch partially updates a recurring template.
type TemplatePatch struct {
	Amount      *float64      `json:"amount,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Description *string       `json:"description,omitempty"`
	DayOfMonth  *int          `json:"dayOfMonth,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Split       *[]SplitEntry `json:"split,omitempty"`
	Enabled     *bool         `json:"enabled,omitempty"`
}

// BudgetType tags the Budget variant.
type BudgetType string

const (
	BudgetMonthly  BudgetType = "monthly"  // aggregate spend across all categories
	BudgetCategory BudgetType = "category" // spend within one category
)

// Budget is a tagged variant: monthly budgets ignore Category, category
// budgets require it. Always evaluated against the current calendar month;
// there is no per-month snapshot.
type Budget struct {
	ID        string     `json:"id"`
	Type      BudgetType `json:"type"`
	Category  string     `json:"category,omitempty"`
	Amount    float64    `json:"amount"`
	CreatedAt string     `json:"createdAt"`
}

// Validate enforces exhaustive matching on the budget variant.
func (b Budget) Validate() error {
	switch b.Type {
	case BudgetMonthly:
		return nil
	case BudgetCategory:
		if strings.TrimSpace(b.Category) == "" {
			return errors.New("category budget requires a category")
		}
		return nil
	default:
		return errors.New("unknown budget type: " + string(b.Type))
	}
}

// BudgetInput carries the caller-supplied fields of a new budget.
type BudgetInput struct {
	Type     BudgetType `json:"type"`
	Category string     `json:"category,omitempty"`
	Amount   float64    `json:"amount"`
}

// BudgetPatch partially updates a budget. Type is not patchable.
type BudgetPatch struct {
	Category *string  `json:"category,omitempty"`
	Amount   *float64 `json:"amount,omitempty"`
}

// UserData is the full per-user aggregate. Every mutation reads the whole
// record, changes one part and writes the whole record back.
type UserData struct {
	Expenses           []Expense           `json:"expenses"`
	Preferences        Preferences         `json:"preferences"`
	RecurringTemplates []RecurringTemplate `json:"recurringTemplates"`
	Budgets            []Budget            `json:"budgets"`
}

// DefaultUserData is the record a fresh signup starts with.
func DefaultUserData() UserData {
	return UserData{
		Expenses:           []Expense{},
		Preferences:        DefaultPreferences(),
		RecurringTemplates: []RecurringTemplate{},
		Budgets:            []Budget{},
	}
}

// MonthKey formats a time as the YYYY-MM period key used by the recurring
// engine and the budget window.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DateKey formats a time as the YYYY-MM-DD calendar date stored on expenses.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDayOfMonth maps a template day (1-31) onto an actual day of the given
// month, so dayOfMonth=31 lands on Apr 30 or Feb 28/29.
func ClampDayOfMonth(day, year int, month time.Month) int {
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// FiniteAmount reports whether a is usable as an expense amount. Import paths
// silently drop records that fail this.
func FiniteAmount(a float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0)
}

// NormalizeImported fills the defaults an external record may be missing and
// strips unusable tag and split entries. The amount must already be finite.
func NormalizeImported(e Expense, now time.Time, newID func() string) Expense {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Category == "" {
		e.Category = CategoryFallback
	}
	if e.Date == "" {
		e.Date = DateKey(now)
	}
	if e.CreatedAt == "" {
		e.CreatedAt = now.Format(time.RFC3339)
	}
	if e.Tags != nil {
		tags := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) == 0 {
			tags = nil
		}
		e.Tags = tags
	}
	if e.Split != nil {
		split := make([]SplitEntry, 0, len(e.Split))
		for _, s := range e.Split {
			if s.Who != "" && FiniteAmount(s.Share) && s.Share > 0 {
				split = append(split, s)
			}
		}
		if len(split) == 0 {
			split = nil
		}
		e.Split = split
	}
	return e
}
