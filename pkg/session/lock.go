package session

import (
	"context"
	"sync"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locks serializes work per key.
// It uses reference counting to garbage collect unused locks.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLocks creates an empty lock registry.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release(key) after unlocking.
func (l *Locks) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// WithLock executes fn while holding the lock for key.
func (l *Locks) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(key)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Len returns the number of locks currently held or awaited.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
