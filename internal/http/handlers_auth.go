package http

import (
	"fmt"
	"net/http"

	"kharcha/internal/core"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username string `json:"username,omitempty"`
	Active   bool   `json:"active"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	if err := s.auth.Signup(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Username: req.Username, Active: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrMalformedInput, err))
		return
	}

	if err := s.auth.Login(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Username: req.Username, Active: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	username, ok := s.auth.CurrentSession(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{Username: username, Active: ok})
}
