package http

import (
	"fmt"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	statuses, err := s.budgets.Statuses(r.Context(), username, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var in core.BudgetInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}
	if in.Amount < 0 || !core.FiniteAmount(in.Amount) {
		writeError(w, r, fmt.Errorf("%w: amount must be a non-negative number", core.ErrMalformedInput))
		return
	}

	b, err := s.store.AddBudget(r.Context(), username, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var patch core.BudgetPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	b, err := s.store.UpdateBudget(r.Context(), username, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteBudget(r.Context(), username, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetAlerts is invoked by the presentation layer after it refreshes
// budget data; firing is once per threshold per budget per month regardless
// of how often this endpoint is hit.
func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	alerts, err := s.budgets.CheckAlerts(r.Context(), username, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []services.Alert{} // encode as [] rather than null
	}
	writeJSON(w, http.StatusOK, alerts)
}
