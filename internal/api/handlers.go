package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/chat"
	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/session"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// respondServiceError maps domain errors to HTTP responses. op names the
// failed operation in logs and in the 500 message.
func respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, captcha.ErrChallengeNotFound):
		respondError(w, http.StatusNotFound, "captcha_not_found", "captcha challenge not found or expired")
	case errors.Is(err, session.ErrCaptchaRequired):
		respondError(w, http.StatusBadRequest, "captcha_required", "Please complete the captcha verification")
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusUnauthorized, "session_not_found", "session not found or expired")
	case errors.Is(err, session.ErrUnknownField):
		respondError(w, http.StatusNotFound, "unknown_field", err.Error())
	case errors.Is(err, session.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, filter.ErrUnknownCategory):
		respondError(w, http.StatusBadRequest, "unknown_category", err.Error())
	case errors.Is(err, chat.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "validation_error", "message content is required")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Debug("request cancelled", "op", op, "error", err)
		respondError(w, http.StatusServiceUnavailable, "cancelled", "request cancelled")
	default:
		slog.Error("request failed", "op", op, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+op)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.health.HealthCheckAll(r.Context())
	if !report.Ready {
		slog.Warn("readiness check failed", "services", report.Services)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(w).Encode(apiResponse{
			Success: false,
			Data:    report,
			Error:   &apiError{Code: "not_ready", Message: "service not ready"},
		}); err != nil {
			slog.Error("failed to encode error response", "error", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, report)
}
