// Package session implements demo login, session lifetime and the profile
// editor on top of a storage.Repository.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/models"
	"github.com/terra-clan/pathfinder/internal/storage"
	"github.com/terra-clan/pathfinder/internal/task"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCaptchaRequired    = errors.New("please complete the captcha verification")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownField       = errors.New("unknown profile field")
	ErrItemNotFound       = errors.New("profile item not found")
)

// List fields that support add/remove
const (
	FieldSkills    = "skills"
	FieldInterests = "interests"
)

// Defaults for a user created on first login
const (
	DefaultName         = "Alex Johnson"
	DefaultRole         = "UX Designer"
	DefaultProfileImage = "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2"
	defaultBio          = "UX designer and frontend developer with 3 years of experience. Passionate about creating intuitive and accessible digital experiences."
	defaultExperience   = "3-5 years"
	defaultEducation    = "Bachelor's in Computer Science"
)

func defaultInterests() []string {
	return []string{"UX Design", "Frontend Development", "Accessibility"}
}

func defaultSkills() []string {
	return []string{"HTML/CSS", "JavaScript", "React", "UI Design", "Wireframing", "Figma", "User Testing"}
}

// CaptchaGate is the part of the captcha service login depends on
type CaptchaGate interface {
	Get(ctx context.Context, id string) (*captcha.Challenge, error)
	Consume(ctx context.Context, id string) error
}

// Config controls login and profile behavior
type Config struct {
	TTL          time.Duration
	DemoPassword string
	LoginDelay   time.Duration
	SaveDelay    time.Duration
}

// EndFunc is called with the ID of every session that ends
type EndFunc func(sessionID string)

// Manager owns user sessions
type Manager struct {
	repo    storage.Repository
	captcha CaptchaGate
	tokens  *TokenIssuer
	config  Config
	now     func() time.Time

	// serializes read-modify-write of user records
	mu sync.Mutex

	hooksMu sync.RWMutex
	onEnd   []EndFunc
}

// NewManager creates a session manager
func NewManager(repo storage.Repository, gate CaptchaGate, tokens *TokenIssuer, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{
		repo:    repo,
		captcha: gate,
		tokens:  tokens,
		config:  cfg,
		now:     time.Now,
	}
}

// OnEnd registers fn to run after a session is logged out or expires
func (m *Manager) OnEnd(fn EndFunc) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.onEnd = append(m.onEnd, fn)
}

func (m *Manager) ended(sessionID string) {
	m.hooksMu.RLock()
	hooks := append([]EndFunc(nil), m.onEnd...)
	m.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(sessionID)
	}
}

// Login checks the captcha, waits out the simulated latency, then checks the
// demo password. A failed password leaves the captcha verified.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := m.requireCaptcha(ctx, req.CaptchaID); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	t := task.After(ctx, m.config.LoginDelay, func(ctx context.Context) (*models.LoginResponse, error) {
		if email == "" || req.Password != m.config.DemoPassword {
			return nil, ErrInvalidCredentials
		}
		if err := m.captcha.Consume(ctx, req.CaptchaID); err != nil {
			return nil, ErrCaptchaRequired
		}

		user, err := m.userForEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return m.startSession(ctx, user)
	})

	resp, err := t.Wait(ctx)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			slog.Info("login rejected", "email", email)
		}
		return nil, err
	}

	slog.Info("user logged in", "user_id", resp.User.ID, "expires_at", resp.ExpiresAt)
	return resp, nil
}

func (m *Manager) requireCaptcha(ctx context.Context, id string) error {
	if id == "" {
		return ErrCaptchaRequired
	}
	c, err := m.captcha.Get(ctx, id)
	if err != nil {
		if errors.Is(err, captcha.ErrChallengeNotFound) {
			return ErrCaptchaRequired
		}
		return fmt.Errorf("failed to load captcha: %w", err)
	}
	if !c.Verified {
		return ErrCaptchaRequired
	}
	return nil
}

func (m *Manager) userForEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	now := m.now().UTC()
	user = &models.User{
		ID:           uuid.New().String(),
		Name:         DefaultName,
		Email:        email,
		ProfileImage: DefaultProfileImage,
		Role:         DefaultRole,
		Bio:          defaultBio,
		Experience:   defaultExperience,
		Education:    defaultEducation,
		Interests:    defaultInterests(),
		Skills:       defaultSkills(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user created", "user_id", user.ID)
	return user, nil
}

func (m *Manager) startSession(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	now := m.now().UTC()
	s := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}
	if err := m.repo.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := m.tokens.Issue(s)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, ExpiresAt: s.ExpiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to a live session
func (m *Manager) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	sessionID, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	s, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s == nil || m.now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Logout ends a session and runs the end hooks
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	s, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if s == nil {
		return ErrSessionNotFound
	}
	if err := m.repo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.ended(sessionID)
	slog.Info("user logged out", "session_id", sessionID, "user_id", s.UserID)
	return nil
}

// Expire removes every session past its expiry and runs the end hooks for each
func (m *Manager) Expire(ctx context.Context) ([]string, error) {
	ids, err := m.repo.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	for _, id := range ids {
		m.ended(id)
	}
	return ids, nil
}

// User returns the user behind a session
func (m *Manager) User(ctx context.Context, s *models.Session) (*models.User, error) {
	u, err := m.repo.GetUser(ctx, s.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, ErrSessionNotFound
	}
	return u, nil
}

// UpdateProfile merges a partial update after the simulated save delay
func (m *Manager) UpdateProfile(ctx context.Context, s *models.Session, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Email != nil && strings.TrimSpace(*upd.Email) == "" {
		return nil, fmt.Errorf("email must not be empty")
	}
	return m.save(ctx, s, func(u *models.User) error {
		upd.Apply(u)
		return nil
	})
}

// AddItem appends value to a list field, ignoring blanks and duplicates
func (m *Manager) AddItem(ctx context.Context, s *models.Session, field, value string) (*models.User, error) {
	value = strings.TrimSpace(value)
	return m.save(ctx, s, func(u *models.User) error {
		list, err := listField(u, field)
		if err != nil {
			return err
		}
		if value == "" {
			return nil
		}
		for _, v := range *list {
			if v == value {
				return nil
			}
		}
		*list = append(*list, value)
		return nil
	})
}

// RemoveItem deletes the item at index from a list field
func (m *Manager) RemoveItem(ctx context.Context, s *models.Session, field string, index int) (*models.User, error) {
	return m.save(ctx, s, func(u *models.User) error {
		list, err := listField(u, field)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(*list) {
			return fmt.Errorf("%w: %s[%d]", ErrItemNotFound, field, index)
		}
		*list = append((*list)[:index:index], (*list)[index+1:]...)
		return nil
	})
}

func listField(u *models.User, field string) (*[]string, error) {
	switch field {
	case FieldSkills:
		return &u.Skills, nil
	case FieldInterests:
		return &u.Interests, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func (m *Manager) save(ctx context.Context, s *models.Session, fn func(u *models.User) error) (*models.User, error) {
	t := task.After(ctx, m.config.SaveDelay, func(ctx context.Context) (*models.User, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		u, err := m.User(ctx, s)
		if err != nil {
			return nil, err
		}
		if err := fn(u); err != nil {
			return nil, err
		}
		u.UpdatedAt = m.now().UTC()
		if err := m.repo.UpdateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		return u, nil
	})
	return t.Wait(ctx)
}
