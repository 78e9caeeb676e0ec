// Package dialogue owns per-user conversation state and decides the next
// conversational action for each turn.
package dialogue

import (
	"sync"
	"time"

	"github.com/carebridge/triage-assistant/internal/domain"
)

// SessionStore is the registry of live conversation states, keyed by user ID.
// Implementations must be safe for concurrent use; compound read-modify-write
// sequences are serialized by the Manager on top of this.
type SessionStore interface {
	Get(userID string) (*domain.ConversationState, bool)
	Put(userID string, state *domain.ConversationState)
	Delete(userID string)
	// ReapExpired removes every session inactive longer than timeout and
	// returns the affected user IDs.
	ReapExpired(now time.Time, timeout time.Duration) []string
	// Range calls fn for each live session until fn returns false.
	Range(fn func(userID string, state *domain.ConversationState) bool)
	Len() int
}

// MemoryStore is a mutex-guarded in-process SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ConversationState
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.ConversationState)}
}

func (s *MemoryStore) Get(userID string) (*domain.ConversationState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[userID]
	return state, ok
}

func (s *MemoryStore) Put(userID string, state *domain.ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = state
}

func (s *MemoryStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func (s *MemoryStore) ReapExpired(now time.Time, timeout time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for userID, state := range s.sessions {
		if state.Expired(now, timeout) {
			expired = append(expired, userID)
		}
	}
	for _, userID := range expired {
		delete(s.sessions, userID)
	}
	return expired
}

func (s *MemoryStore) Range(fn func(userID string, state *domain.ConversationState) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for userID, state := range s.sessions {
		if !fn(userID, state) {
			return
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
