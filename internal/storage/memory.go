package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/terra-clan/pathfinder/internal/models"
)

// MemoryRepository implements Repository in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	sessions map[string]*models.Session
	messages map[string][]*models.ChatMessage
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]*models.User),
		sessions: make(map[string]*models.Session),
		messages: make(map[string][]*models.ChatMessage),
	}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.Interests = append([]string(nil), u.Interests...)
	cp.Skills = append([]string(nil), u.Skills...)
	return &cp
}

// CreateUser stores a new user
func (r *MemoryRepository) CreateUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; exists {
		return fmt.Errorf("user already exists: %s", u.ID)
	}
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("email already registered: %s", u.Email)
		}
	}
	r.users[u.ID] = copyUser(u)
	return nil
}

// GetUser retrieves a user by ID
func (r *MemoryRepository) GetUser(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

// GetUserByEmail retrieves a user by email (case-insensitive)
func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// UpdateUser replaces an existing user
func (r *MemoryRepository) UpdateUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("user not found: %s", u.ID)
	}
	r.users[u.ID] = copyUser(u)
	return nil
}

// CreateSession stores a new session
func (r *MemoryRepository) CreateSession(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

// GetSession retrieves a session by ID
func (r *MemoryRepository) GetSession(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// DeleteSession removes a session and its chat transcript
func (r *MemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	delete(r.sessions, id)
	delete(r.messages, id)
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now and returns their IDs
func (r *MemoryRepository) DeleteExpiredSessions(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
			delete(r.messages, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// AppendMessage adds a message to a session transcript
func (r *MemoryRepository) AppendMessage(_ context.Context, m *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *m
	r.messages[m.SessionID] = append(r.messages[m.SessionID], &cp)
	return nil
}

// ListMessages returns a session transcript in insertion order
func (r *MemoryRepository) ListMessages(_ context.Context, sessionID string) ([]*models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[sessionID]
	result := make([]*models.ChatMessage, 0, len(stored))
	for _, m := range stored {
		cp := *m
		result = append(result, &cp)
	}
	return result, nil
}

// ClearMessages empties a session transcript
func (r *MemoryRepository) ClearMessages(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, sessionID)
	return nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}
