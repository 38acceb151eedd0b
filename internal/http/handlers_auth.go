package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"paragony/internal/auth"
)

type registerPayload struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token       string `json:"token"`
	AccountID   int64  `json:"account_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var p registerPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(p.Email) == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	account, err := s.authn.Register(r.Context(), p.Email, p.DisplayName, p.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Registration failed", "error", err)
			respondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, err := s.jwt.Generate(account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{
		Token:       token,
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.authn.Authenticate(r.Context(), p.Email, p.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.jwt.Generate(account)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	respondJSON(w, http.StatusOK, authResponse{
		Token:       token,
		AccountID:   account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	})
}
