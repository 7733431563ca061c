// Package chat keeps per-session transcripts with the canned assistant and
// fans new messages out to websocket subscribers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/pathfinder/internal/models"
	"github.com/terra-clan/pathfinder/internal/task"
)

// ErrEmptyMessage is returned when a message has no content after trimming
var ErrEmptyMessage = errors.New("message is empty")

// DefaultReplyDelay is how long the assistant "types" before replying
const DefaultReplyDelay = 1500 * time.Millisecond

// Event types pushed to subscribers
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventCleared = "cleared"
)

// Event is a change to a session transcript
type Event struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Typing  bool                `json:"typing,omitempty"`
}

// Transcript is the message persistence the service needs
type Transcript interface {
	AppendMessage(ctx context.Context, m *models.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]*models.ChatMessage, error)
	ClearMessages(ctx context.Context, sessionID string) error
}

// Reply is a handle on a scheduled assistant answer
type Reply = task.Task[*models.ChatMessage]

type sessionState struct {
	ctx     context.Context
	cancel  context.CancelFunc
	nextSub int
	subs    map[int]chan Event
}

// Service manages chat transcripts
type Service struct {
	store Transcript
	delay time.Duration

	mu       sync.Mutex
	base     context.Context
	stop     context.CancelFunc
	sessions map[string]*sessionState
}

// NewService creates a chat service
func NewService(store Transcript, delay time.Duration) *Service {
	if delay < 0 {
		delay = 0
	}
	base, stop := context.WithCancel(context.Background())
	return &Service{
		store:    store,
		delay:    delay,
		base:     base,
		stop:     stop,
		sessions: make(map[string]*sessionState),
	}
}

// state returns the live state for a session, creating it if needed. Caller holds mu.
func (s *Service) state(sessionID string) *sessionState {
	st, ok := s.sessions[sessionID]
	if !ok {
		ctx, cancel := context.WithCancel(s.base)
		st = &sessionState{ctx: ctx, cancel: cancel, subs: make(map[int]chan Event)}
		s.sessions[sessionID] = st
	}
	return st
}

// Send records a user message and schedules the assistant reply.
// The reply is dropped if the session ends or is cleared before it fires.
func (s *Service) Send(ctx context.Context, sessionID, content string) (*models.ChatMessage, *Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, ErrEmptyMessage
	}

	msg := &models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Content:   content,
		Sender:    models.SenderUser,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.mu.Lock()
	st := s.state(sessionID)
	sessionCtx := st.ctx
	s.mu.Unlock()

	s.publish(sessionID, Event{Type: EventMessage, Message: msg})
	s.publish(sessionID, Event{Type: EventTyping, Typing: true})

	reply := task.After(sessionCtx, s.delay, func(ctx context.Context) (*models.ChatMessage, error) {
		bot := &models.ChatMessage{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Content:   Answer(content),
			Sender:    models.SenderBot,
			Timestamp: time.Now().UTC(),
		}
		if err := s.store.AppendMessage(ctx, bot); err != nil {
			slog.Error("failed to store assistant reply", "session_id", sessionID, "error", err)
			return nil, err
		}
		s.publish(sessionID, Event{Type: EventMessage, Message: bot})
		s.publish(sessionID, Event{Type: EventTyping, Typing: false})
		return bot, nil
	})

	return msg, reply, nil
}

// Messages returns the transcript oldest first
func (s *Service) Messages(ctx context.Context, sessionID string) ([]*models.ChatMessage, error) {
	msgs, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Clear empties the transcript and drops pending replies
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	if st, ok := s.sessions[sessionID]; ok {
		st.cancel()
		st.ctx, st.cancel = context.WithCancel(s.base)
	}
	s.mu.Unlock()

	if err := s.store.ClearMessages(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	s.publish(sessionID, Event{Type: EventCleared})
	return nil
}

// Subscribe streams transcript events for a session until unsubscribe is
// called or the session ends. Slow subscribers miss events.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	id := st.nextSub
	st.nextSub++
	ch := make(chan Event, 16)
	st.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.sessions[sessionID]; ok && cur == st {
				if c, ok := st.subs[id]; ok {
					delete(st.subs, id)
					close(c)
				}
			}
		})
	}
	return ch, unsubscribe
}

func (s *Service) publish(sessionID string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	for _, ch := range st.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("chat subscriber too slow, dropping event", "session_id", sessionID, "type", ev.Type)
		}
	}
}

// EndSession cancels pending replies and closes subscribers of a session
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	st.cancel()
	for id, ch := range st.subs {
		delete(st.subs, id)
		close(ch)
	}
	delete(s.sessions, sessionID)
}

// ActiveSessions returns how many sessions hold live chat state
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close cancels every pending reply and closes all subscribers
func (s *Service) Close() {
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for sessionID, st := range s.sessions {
		for id, ch := range st.subs {
			delete(st.subs, id)
			close(ch)
		}
		delete(s.sessions, sessionID)
	}
}
