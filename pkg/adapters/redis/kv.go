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

// KVStore implements ports.KVStore using Redis.
// Expiry is delegated to Redis key TTLs, so expired keys are never returned.
type KVStore struct {
	base
	now func() time.Time
}

// NewKVStore creates a key/value store on an existing client.
func NewKVStore(client *backend.Client, opts ...Option) *KVStore {
	return &KVStore{base: newBase(client, opts), now: time.Now}
}

func (s *KVStore) key(k string) string {
	return s.prefix + "kv:" + k
}

// Put stores the entry as JSON with a matching Redis TTL.
func (s *KVStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := domain.NewEntry(value, s.now(), ttl)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves the entry for key.
func (s *KVStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Entry{}, domain.ErrNotFound
		}
		return domain.Entry{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var entry domain.Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return domain.Entry{}, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return entry, nil
}

// Delete removes key and reports whether it existed.
func (s *KVStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete from redis: %w", err)
	}
	return n > 0, nil
}

// Clear removes every key of this store's namespace.
// Only keys under the store prefix are touched, never the whole database.
func (s *KVStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.key("*"), 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to clear redis keys: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear redis keys: %w", err)
		}
	}
	return nil
}
