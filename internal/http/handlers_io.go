package http

import (
	"fmt"
	"io"
	"net/http"

	"kharcha/internal/codec"
	"kharcha/internal/core"
)

// Import bodies are full files; cap them well above any realistic ledger.
const maxImportBytes = 16 << 20

type importResponse struct {
	Imported int `json:"imported"` // resulting total ledger size after merge
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := codec.ExpensesToCSV(data.Expenses)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := codec.ExportFilename(username, s.now(), "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := codec.ExpensesToJSON(data.Expenses)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := codec.ExportFilename(username, s.now(), "json")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(out)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	incoming, err := codec.ExpensesFromCSV(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := s.store.MergeExpenses(r.Context(), username, incoming)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: count})
}

func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: read body: %v", core.ErrMalformedInput, err))
		return
	}

	incoming, err := codec.ExpensesFromJSON(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := s.store.MergeExpenses(r.Context(), username, incoming)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: count})
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	username, ok := s.activeUser(w, r)
	if !ok {
		return
	}
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sheets export not configured"})
		return
	}

	data, err := s.store.Read(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.exporter.Append(r.Context(), username, data.Expenses); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"exported": len(data.Expenses)})
}
