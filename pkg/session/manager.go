package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/courier/internal/logging"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	"github.com/google/uuid"
)

const (
	// KeyPrefix namespaces session tokens inside the key/value store.
	KeyPrefix = "session:"

	// DefaultTTL is the fixed lifetime of a new session.
	DefaultTTL = 3600 * time.Second
)

// Hooks are optional callbacks fired on session events.
type Hooks struct {
	OnCreate func(ctx context.Context, s domain.Session)
	OnResume func(ctx context.Context, s domain.Session)
}

// Manager owns session tokens and the generic key/value facility.
type Manager struct {
	store    ports.KVStore
	ttl      time.Duration
	newToken func() string
	hooks    Hooks
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTokenGenerator replaces the UUID token source.
func WithTokenGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newToken = gen
	}
}

// WithHooks registers session event callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// NewManager creates a Session Manager on the given key/value store.
func NewManager(store ports.KVStore, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store must not be nil")
	}
	m := &Manager{
		store:    store,
		ttl:      DefaultTTL,
		newToken: uuid.NewString,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Store returns the underlying key/value store.
func (m *Manager) Store() ports.KVStore {
	return m.store
}

// Put stores value under key. A non-positive ttl means the entry never expires.
func (m *Manager) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.store.Put(ctx, key, value, ttl)
}

// Get returns the live value for key. Expired entries are evicted by the read.
func (m *Manager) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := m.store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Delete removes key and reports whether it existed.
func (m *Manager) Delete(ctx context.Context, key string) (bool, error) {
	return m.store.Delete(ctx, key)
}

// Clear removes every entry, sessions included.
func (m *Manager) Clear(ctx context.Context) error {
	m.logger.Warn("Clearing key/value store")
	return m.store.Clear(ctx)
}

// GetOrCreate resumes candidate when it names a live session, otherwise it issues a
// fresh token with the configured TTL. Resuming does not extend the expiry.
func (m *Manager) GetOrCreate(ctx context.Context, candidate string) (domain.Session, bool, error) {
	if candidate != "" {
		s, err := m.Lookup(ctx, candidate)
		if err == nil {
			if m.hooks.OnResume != nil {
				m.hooks.OnResume(ctx, s)
			}
			return s, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, false, err
		}
		m.logger.Debug("Session not live, issuing a new one", "candidate", candidate)
	}

	token := m.newToken()
	if err := m.store.Put(ctx, key(token), token, m.ttl); err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to create session: %w", err)
	}
	s, err := m.Lookup(ctx, token)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to read back session: %w", err)
	}

	m.logger.Debug("Session created", "session_id", token, "ttl", m.ttl)
	if m.hooks.OnCreate != nil {
		m.hooks.OnCreate(ctx, s)
	}
	return s, true, nil
}

// IsValid reports whether token names a live session.
func (m *Manager) IsValid(ctx context.Context, token string) (bool, error) {
	_, err := m.Lookup(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Lookup returns the live session for token, or domain.ErrNotFound.
func (m *Manager) Lookup(ctx context.Context, token string) (domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, domain.ErrNotFound
	}
	entry, err := m.store.Get(ctx, key(token))
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		Token:     token,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

// End deletes a session before its expiry.
func (m *Manager) End(ctx context.Context, token string) (bool, error) {
	return m.store.Delete(ctx, key(token))
}

// Sweep drops expired entries when the store supports it.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	sw, ok := m.store.(ports.Sweeper)
	if !ok {
		return 0, nil
	}
	return sw.Sweep(ctx)
}

func key(token string) string {
	return KeyPrefix + token
}
