package http

import (
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	templates, err := s.store.Templates(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleAddTemplate(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var in core.TemplateInput
	if err := readJSON(r, &in); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}
	if in.Amount < 0 || !core.FiniteAmount(in.Amount) {
		writeError(w, r, fmt.Errorf("%w: amount must be a non-negative number", core.ErrMalformedInput))
		return
	}

	tpl, err := s.store.AddTemplate(r.Context(), username, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	var patch core.TemplatePatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	tpl, err := s.store.UpdateTemplate(r.Context(), username, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteTemplate(r.Context(), username, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type runRecurringResponse struct {
	Created int `json:"created"`
}

func (s *Server) handleRunRecurring(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	created, err := s.recurring.Run(r.Context(), username, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runRecurringResponse{Created: created})
}
