package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/pathfinder/internal/models"
	"github.com/terra-clan/pathfinder/internal/session"
)

// Authenticator resolves a bearer token to a session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// AuthMiddleware handles session token authentication
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the session token from the Authorization header.
// Websocket clients that cannot set headers may pass ?token= instead.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing_token", "provide Authorization header with Bearer token")
			return
		}

		s, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrInvalidToken):
				slog.Warn("invalid session token", "token_prefix", maskToken(token), "remote_addr", r.RemoteAddr)
				respondError(w, http.StatusUnauthorized, "invalid_token", "the provided session token is not valid")
			case errors.Is(err, session.ErrSessionNotFound):
				respondError(w, http.StatusUnauthorized, "session_not_found", "session not found or expired")
			default:
				slog.Error("failed to authenticate session", "error", err)
				respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			}
			return
		}

		slog.Debug("authenticated request", "session_id", s.ID, "user_id", s.UserID)

		ctx := ContextWithSession(r.Context(), s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// maskToken returns first 8 chars of a token for safe logging
func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:8] + "..."
}
