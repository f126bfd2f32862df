package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/courier/pkg/domain"
)

// KVStore implements ports.KVStore in memory with lazy expiry.
// Safe for concurrent use.
type KVStore struct {
	data map[string]domain.Entry
	mu   sync.Mutex
	now  func() time.Time
}

// NewKVStore creates a new in-memory key/value store.
func NewKVStore(opts ...Option) *KVStore {
	o := buildOptions(opts)
	return &KVStore{
		data: make(map[string]domain.Entry),
		now:  o.now,
	}
}

// Put stores value under key. A non-positive ttl means no expiry.
func (s *KVStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := domain.NewEntry(value, s.now(), ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry
	return nil
}

// Get returns the live entry for key, evicting it if it has expired.
// Reads take the write lock because eviction mutates the map.
func (s *KVStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	if entry.Expired(s.now()) {
		delete(s.data, key)
		return domain.Entry{}, domain.ErrNotFound
	}
	return copyEntry(entry), nil
}

// Delete removes key and reports whether a live entry existed.
func (s *KVStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return false, nil
	}
	delete(s.data, key)
	return !entry.Expired(s.now()), nil
}

// Clear removes every entry.
func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]domain.Entry)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *KVStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.data {
		if e.Expired(now) {
			delete(s.data, k)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (s *KVStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func copyEntry(e domain.Entry) domain.Entry {
	if e.ExpiresAt != nil {
		t := *e.ExpiresAt
		e.ExpiresAt = &t
	}
	return e
}
