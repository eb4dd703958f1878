// Package http exposes the store and derived-computation services to the
// presentation layer as a JSON API. Input validation beyond type shape is
// the presentation layer's job; this surface maps domain errors to statuses.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/services"
	"kharcha/internal/sheets"
	"kharcha/internal/store"
)

type Server struct {
	auth      *auth.Service
	store     *store.Store
	recurring *services.RecurringService
	budgets   *services.BudgetService
	exporter  *sheets.Exporter // optional
	now       func() time.Time
}

// NewServer wires every route onto a configured http.Server. The exporter
// may be nil; the sheets endpoint then reports the sink as unconfigured.
func NewServer(addr string, authSvc *auth.Service, st *store.Store, recurring *services.RecurringService, budgets *services.BudgetService, exporter *sheets.Exporter) *http.Server {
	s := &Server{
		auth:      authSvc,
		store:     st,
		recurring: recurring,
		budgets:   budgets,
		exporter:  exporter,
		now:       time.Now,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PATCH /api/preferences", s.handleUpdatePreferences)

	mux.HandleFunc("GET /api/recurring", s.handleListTemplates)
	mux.HandleFunc("POST /api/recurring", s.handleAddTemplate)
	mux.HandleFunc("PATCH /api/recurring/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteTemplate)
	mux.HandleFunc("POST /api/recurring/run", s.handleRunRecurring)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleAddBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("POST /api/budgets/alerts", s.handleBudgetAlerts)

	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/json", s.handleExportJSON)
	mux.HandleFunc("POST /api/export/sheets", s.handleExportSheets)
	mux.HandleFunc("POST /api/import/csv", s.handleImportCSV)
	mux.HandleFunc("POST /api/import/json", s.handleImportJSON)

	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/achievements", s.handleAchievements)

	return &http.Server{
		Addr:           addr,
		Handler:        withRequestLogging(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.DebugContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
