package filter

import (
	"sync"
)

// Store keeps one filter state per session in memory
type Store struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewStore creates an empty filter state store
func NewStore() *Store {
	return &Store{
		states: make(map[string]State),
	}
}

// Get returns the state for a session (the empty state if none was set)
func (s *Store) Get(sessionID string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[sessionID]
	if !ok {
		return Clear()
	}
	return st.clone()
}

// Toggle flips a tag in the session's state and returns the new state
func (s *Store) Toggle(sessionID, category, value string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[sessionID]
	if !ok {
		current = Clear()
	}
	next, err := Toggle(current, category, value)
	if err != nil {
		return current.clone(), err
	}
	s.states[sessionID] = next
	return next.clone(), nil
}

// SetQuery replaces the free-text query of the session's state
func (s *Store) SetQuery(sessionID, query string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[sessionID]
	if !ok {
		current = Clear()
	}
	next := current.clone()
	next.Query = query
	s.states[sessionID] = next
	return next.clone()
}

// Clear resets the session's state
func (s *Store) Clear(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[sessionID] = Clear()
	return Clear()
}

// Delete drops the session's state entirely
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
}

// SessionIDs returns the ids of every session with a stored state
func (s *Store) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of tracked sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
