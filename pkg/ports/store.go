package ports

import (
	"context"
	"time"

	"github.com/aretw0/courier/pkg/domain"
)

// KVStore is a generic key/value store with optional per-entry expiry.
// Implementations must evict (or hide) expired entries on read.
type KVStore interface {
	// Put stores value under key, overwriting any previous entry.
	// A non-positive ttl means the entry never expires.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live entry for key.
	// Returns domain.ErrNotFound if the key was never stored or has expired.
	Get(ctx context.Context, key string) (domain.Entry, error)

	// Delete removes key and reports whether a live entry existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// ConversationStore persists the dialogue state of each session.
type ConversationStore interface {
	// Save overwrites the state of sessionID.
	// Implementations drop the state once its ExpiresAt (if any) has passed.
	Save(ctx context.Context, sessionID string, conv *domain.Conversation) error

	// Load returns the state of sessionID.
	// Returns domain.ErrNotFound if no live state exists.
	Load(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Delete removes the state of sessionID.
	Delete(ctx context.Context, sessionID string) error
}

// ClaimStore keeps claim records. Records are immutable once created.
type ClaimStore interface {
	// Create inserts a claim. Returns domain.ErrClaimExists if the ID is taken.
	Create(ctx context.Context, claim domain.Claim) error

	// Get returns a claim by ID, or domain.ErrNotFound.
	Get(ctx context.Context, claimID string) (domain.Claim, error)
}

// PackageDirectory resolves tracking numbers to their current status.
type PackageDirectory interface {
	// Status returns the package status, or domain.ErrNotFound for unknown tracking numbers.
	Status(ctx context.Context, trackingNumber string) (domain.PackageStatus, error)
}

// ClaimNotifier publishes filed claims to downstream processing.
type ClaimNotifier interface {
	ClaimFiled(ctx context.Context, claim domain.Claim) error
}

// Sweeper is implemented by stores that can proactively drop expired entries.
type Sweeper interface {
	// Sweep removes expired entries and returns how many were dropped.
	Sweep(ctx context.Context) (int, error)
}
