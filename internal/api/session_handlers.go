package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/pathfinder/internal/models"
)

// MeResponse describes the current session and its user
type MeResponse struct {
	Session *models.Session `json:"session"`
	User    *models.User    `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email is required")
		return
	}

	resp, err := s.sessions.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "log in")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := s.sessions.Logout(r.Context(), sess.ID); err != nil {
		respondServiceError(w, err, "log out")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	u, err := s.sessions.User(r.Context(), sess)
	if err != nil {
		respondServiceError(w, err, "get user")
		return
	}
	respondJSON(w, http.StatusOK, MeResponse{Session: sess, User: u})
}

// Profile handlers

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.sessions.User(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	if upd.Email != nil && strings.TrimSpace(*upd.Email) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email must not be empty")
		return
	}

	u, err := s.sessions.UpdateProfile(r.Context(), SessionFromContext(r.Context()), upd)
	if err != nil {
		respondServiceError(w, err, "update profile")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleAddProfileItem(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.sessions.AddItem(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "field"), req.Value)
	if err != nil {
		respondServiceError(w, err, "add profile item")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleRemoveProfileItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "index must be an integer")
		return
	}

	u, err := s.sessions.RemoveItem(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "field"), index)
	if err != nil {
		respondServiceError(w, err, "remove profile item")
		return
	}
	respondJSON(w, http.StatusOK, u)
}
