package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/courier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// noExpiryScore ranks states without expiry in the index (2100-01-01).
const noExpiryScore = 4102444800

// ConversationStore implements ports.ConversationStore using Redis.
// Each state lives in its own key with the session's remaining lifetime as TTL,
// and a sorted set indexes session IDs by expiry for listing.
type ConversationStore struct {
	base
	now func() time.Time
}

// NewConversationStore creates a conversation store on an existing client.
func NewConversationStore(client *backend.Client, opts ...Option) *ConversationStore {
	return &ConversationStore{base: newBase(client, opts), now: time.Now}
}

func (s *ConversationStore) key(sessionID string) string {
	return s.prefix + "conv:" + sessionID
}

func (s *ConversationStore) indexKey() string {
	return s.prefix + "conv:index"
}

// Save persists the state. A state whose session already expired is removed instead.
func (s *ConversationStore) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	var ttl time.Duration
	score := float64(noExpiryScore)
	if conv.ExpiresAt != nil {
		ttl = conv.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, sessionID)
		}
		score = float64(conv.ExpiresAt.Unix())
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sessionID), data, ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the state for sessionID.
func (s *ConversationStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(val, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// Delete removes the state and its index entry.
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the sessions holding state, pruning expired index entries first.
func (s *ConversationStore) List(ctx context.Context) ([]string, error) {
	now := float64(s.now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired conversations: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return sessions, nil
}
