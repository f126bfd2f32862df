package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/adapters/memory"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(t *testing.T, opts ...session.Option) (*session.Manager, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	m, err := session.NewManager(memory.NewKVStore(memory.WithClock(c.Now)), opts...)
	require.NoError(t, err)
	return m, c
}

func TestNewManager_RejectsNilStore(t *testing.T) {
	_, err := session.NewManager(nil)
	assert.Error(t, err)
}

func TestManager_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	m, c := newManager(t)

	s, created, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, s.Token)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, c.Now().Add(session.DefaultTTL), *s.ExpiresAt)

	ok, err := m.IsValid(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	value, ok, err := m.Get(ctx, session.KeyPrefix+s.Token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, s.Token, value)
}

func TestManager_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	m, c := newManager(t)

	s, _, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)

	c.Advance(3601 * time.Second)

	_, ok, err := m.Get(ctx, session.KeyPrefix+s.Token)
	require.NoError(t, err)
	assert.False(t, ok, "session must be absent 3601s after creation")

	valid, err := m.IsValid(ctx, s.Token)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestManager_ResumeDoesNotRenew(t *testing.T) {
	ctx := context.Background()
	m, c := newManager(t)

	first, _, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)

	c.Advance(3000 * time.Second)

	resumed, created, err := m.GetOrCreate(ctx, first.Token)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Token, resumed.Token)
	assert.Equal(t, *first.ExpiresAt, *resumed.ExpiresAt, "resume keeps the original expiry")

	c.Advance(601 * time.Second)

	valid, err := m.IsValid(ctx, first.Token)
	require.NoError(t, err)
	assert.False(t, valid, "original expiry still applies after resume")
}

func TestManager_ExpiredCandidateGetsFreshToken(t *testing.T) {
	ctx := context.Background()
	tokens := []string{"t-1", "t-2"}
	i := 0
	m, c := newManager(t, session.WithTokenGenerator(func() string {
		tok := tokens[i]
		i++
		return tok
	}))

	s, _, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "t-1", s.Token)

	c.Advance(2 * time.Hour)

	s, created, err := m.GetOrCreate(ctx, "t-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "t-2", s.Token)
}

func TestManager_UniqueTokens(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		s, created, err := m.GetOrCreate(ctx, "")
		require.NoError(t, err)
		require.True(t, created)
		seen[s.Token] = struct{}{}
	}
	assert.Len(t, seen, 500)
}

func TestManager_KeyValue(t *testing.T) {
	ctx := context.Background()
	m, c := newManager(t)

	require.NoError(t, m.Put(ctx, "theme", "dark", 0))
	require.NoError(t, m.Put(ctx, "promo", "xyz", 10*time.Second))

	v, ok, err := m.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	c.Advance(11 * time.Second)
	_, ok, err = m.Get(ctx, "promo")
	require.NoError(t, err)
	assert.False(t, ok)

	existed, err := m.Delete(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = m.Delete(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, existed)

	s, _, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx))
	valid, err := m.IsValid(ctx, s.Token)
	require.NoError(t, err)
	assert.False(t, valid, "clear removes sessions too")
}

func TestManager_Hooks(t *testing.T) {
	ctx := context.Background()
	var created, resumed int
	m, _ := newManager(t, session.WithHooks(session.Hooks{
		OnCreate: func(context.Context, domain.Session) { created++ },
		OnResume: func(context.Context, domain.Session) { resumed++ },
	}))

	s, _, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	_, _, err = m.GetOrCreate(ctx, s.Token)
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, resumed)
}

type failingStore struct{ *memory.KVStore }

func (f *failingStore) Get(context.Context, string) (domain.Entry, error) {
	return domain.Entry{}, errors.New("backend down")
}

func TestManager_StoreErrorsPropagate(t *testing.T) {
	m, err := session.NewManager(&failingStore{KVStore: memory.NewKVStore()})
	require.NoError(t, err)

	_, err = m.IsValid(context.Background(), "abc")
	assert.Error(t, err)

	_, _, err = m.GetOrCreate(context.Background(), "abc")
	assert.Error(t, err)
}
