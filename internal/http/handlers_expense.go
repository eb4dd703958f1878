package http

import (
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	filtered := core.FilterExpenses(data.Expenses, core.ExpenseFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var in core.ExpenseInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}
	if in.Amount < 0 || !core.FiniteAmount(in.Amount) {
		writeError(w, r, fmt.Errorf("%w: amount must be a non-negative number", core.ErrMalformedInput))
		return
	}

	e, err := s.store.AddExpense(r.Context(), username, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var patch core.ExpensePatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	e, err := s.store.UpdateExpense(r.Context(), username, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteExpense(r.Context(), username, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	prefs, err := s.store.Preferences(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var patch core.PreferencesPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	prefs, err := s.store.UpdatePreferences(r.Context(), username, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		month = core.MonthKey(s.now())
	}
	writeJSON(w, http.StatusOK, core.ComputeMonthOverview(data.Expenses, month))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.ComputeAchievements(data.Expenses))
}
