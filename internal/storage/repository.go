package storage

import (
	"context"
	"time"

	"github.com/terra-clan/pathfinder/internal/models"
)

// Repository defines the interface for user, session and chat persistence.
// Getters return (nil, nil) when a record does not exist.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) ([]string, error)

	// Chat
	AppendMessage(ctx context.Context, m *models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]*models.ChatMessage, error)
	ClearMessages(ctx context.Context, sessionID string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
