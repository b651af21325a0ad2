package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"resxai/internal/app"
	"resxai/pkg/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  domain.Account `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "auth.register", "rate_limited")
		return
	}
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, token, err := s.app.Register(req.Name, req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.register", "fail", "reason", reason(err))
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.register", "success", "account_id", account.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: account})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "auth.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.login", "fail", "reason", reason(err))
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.login", "success", "account_id", account.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: account})
}

func reason(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, app.ErrEmailAlreadyExists):
		return "email_exists"
	case errors.Is(err, app.ErrNameEmailPasswordRequired):
		return "missing_fields"
	default:
		return "internal"
	}
}
