package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/courier/pkg/domain"
)

// ConversationStore implements ports.ConversationStore in memory.
// States are dropped lazily once they outlive their session.
type ConversationStore struct {
	data map[string]*domain.Conversation
	mu   sync.Mutex
	now  func() time.Time
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore(opts ...Option) *ConversationStore {
	o := buildOptions(opts)
	return &ConversationStore{
		data: make(map[string]*domain.Conversation),
		now:  o.now,
	}
}

// Save overwrites the state for sessionID with a private copy.
func (s *ConversationStore) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	copied := conv.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load returns a copy of the state so callers cannot mutate the store through the pointer.
func (s *ConversationStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if conv.Expired(s.now()) {
		delete(s.data, sessionID)
		return nil, domain.ErrNotFound
	}
	return conv.Clone(), nil
}

// Delete removes the state.
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sweep drops every state whose session has expired.
func (s *ConversationStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, conv := range s.data {
		if conv.Expired(now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

// List returns the sessions that currently hold dialogue state.
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sessions := make([]string, 0, len(s.data))
	for id, conv := range s.data {
		if !conv.Expired(now) {
			sessions = append(sessions, id)
		}
	}
	return sessions, nil
}
