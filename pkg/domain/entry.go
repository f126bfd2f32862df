package domain

import "time"

// Entry is a stored value with its bookkeeping times.
// A nil ExpiresAt means the entry never expires.
type Entry struct {
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewEntry builds an entry created at now. A non-positive ttl yields an entry without expiry.
func NewEntry(value string, now time.Time, ttl time.Duration) Entry {
	e := Entry{Value: value, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	return e
}

// Expired reports whether the entry is past its expiry at the given instant.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// TTL returns the remaining lifetime at now, or zero when the entry never expires.
// An already expired entry reports a negative duration.
func (e Entry) TTL(now time.Time) time.Duration {
	if e.ExpiresAt == nil {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

// Session is a live session token.
type Session struct {
	Token     string     `json:"session_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
