package captcha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotVerified is returned when a challenge is consumed before being passed
var ErrNotVerified = errors.New("challenge not verified")

// Config holds challenge service settings
type Config struct {
	Length        int
	TTL           time.Duration
	SpeechEnabled bool
}

// Service manages challenges held in a Store
type Service struct {
	store  Store
	config Config
	src    Source

	// serialises load-modify-save cycles
	mu sync.Mutex
}

// NewService creates a challenge service
func NewService(store Store, cfg Config) *Service {
	if cfg.Length <= 0 {
		cfg.Length = DefaultLength
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &Service{
		store:  store,
		config: cfg,
		src:    globalSource{},
	}
}

// WithSource replaces the randomness source, mainly for tests
func (s *Service) WithSource(src Source) *Service {
	s.src = src
	return s
}

func (s *Service) options() []Option {
	return []Option{WithLength(s.config.Length), WithSource(s.src)}
}

// Create generates and stores a new challenge
func (s *Service) Create(ctx context.Context) (*Challenge, error) {
	now := time.Now().UTC()
	v := NewVerifier(s.options()...)

	c := v.Snapshot()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.ExpiresAt = now.Add(s.config.TTL)

	if err := s.store.Save(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	slog.Debug("captcha challenge created", "id", c.ID)
	return &c, nil
}

// Get returns a stored challenge
func (s *Service) Get(ctx context.Context, id string) (*Challenge, error) {
	return s.store.Load(ctx, id)
}

// Refresh regenerates the code of a challenge
func (s *Service) Refresh(ctx context.Context, id string) (*Challenge, error) {
	return s.update(ctx, id, func(v *Verifier) {
		if !v.Verified() {
			v.Generate()
		}
	})
}

// Verify checks input against a challenge. The returned challenge reflects
// the new state; a wrong answer is reported through its Error field, not err.
func (s *Service) Verify(ctx context.Context, id, input string) (*Challenge, bool, error) {
	var ok bool
	c, err := s.update(ctx, id, func(v *Verifier) {
		ok = v.Verify(input)
	})
	if err != nil {
		return nil, false, err
	}

	if ok {
		slog.Info("captcha verified", "id", id)
	} else {
		slog.Debug("captcha verification failed", "id", id, "attempts", c.Attempts)
	}
	return c, ok, nil
}

// Speak reads a challenge to sp. Speech may be disabled by configuration,
// in which case sp is never called and ok is false.
func (s *Service) Speak(ctx context.Context, id string, sp Speaker) (bool, error) {
	c, err := s.store.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if !s.config.SpeechEnabled {
		return false, nil
	}
	Resume(*c, s.options()...).Speak(sp)
	return sp != nil, nil
}

// Consume removes a verified challenge so it cannot gate a second action
func (s *Service) Consume(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if !c.Verified {
		return ErrNotVerified
	}
	return s.store.Delete(ctx, id)
}

// Image renders a challenge as SVG
func (s *Service) Image(ctx context.Context, id string) ([]byte, error) {
	c, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderSVG(c.Code, c.Noise), nil
}

// Sweep removes expired challenges from the store
func (s *Service) Sweep(ctx context.Context) (int, error) {
	return s.store.Sweep(ctx, time.Now())
}

func (s *Service) update(ctx context.Context, id string, fn func(v *Verifier)) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	v := Resume(*c, s.options()...)
	fn(v)

	next := v.Snapshot()
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return &next, nil
}
