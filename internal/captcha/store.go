package captcha

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrChallengeNotFound is returned when a challenge id is unknown or expired
var ErrChallengeNotFound = errors.New("challenge not found")

// Store persists challenges between requests
type Store interface {
	Save(ctx context.Context, c *Challenge) error
	Load(ctx context.Context, id string) (*Challenge, error)
	Delete(ctx context.Context, id string) error

	// Sweep removes expired challenges and returns how many were removed
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// MemoryStore keeps challenges in process memory
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]Challenge),
	}
}

// Save stores a copy of c
func (s *MemoryStore) Save(_ context.Context, c *Challenge) error {
	cp := *c
	cp.Noise = append([]Stroke(nil), c.Noise...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.ID] = cp
	return nil
}

// Load returns a copy of the stored challenge
func (s *MemoryStore) Load(_ context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok || c.IsExpired(time.Now()) {
		return nil, ErrChallengeNotFound
	}
	c.Noise = append([]Stroke(nil), c.Noise...)
	return &c, nil
}

// Delete removes a challenge; unknown ids are ignored
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, id)
	return nil
}

// Sweep removes expired challenges
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.challenges {
		if c.IsExpired(now) {
			delete(s.challenges, id)
			removed++
		}
	}
	return removed, nil
}
