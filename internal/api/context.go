package api

import (
	"context"

	"github.com/terra-clan/pathfinder/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext extracts the authenticated session from context
func SessionFromContext(ctx context.Context) *models.Session {
	s, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return s
}

// ContextWithSession adds the authenticated session to context
func ContextWithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}
