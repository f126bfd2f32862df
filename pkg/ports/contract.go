package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clock advances the time observed by the store under test.
type Clock func(d time.Duration)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract. advance must move the store's notion of
// "now" forward (an injected clock or miniredis FastForward).
func RunKVStoreContract(t *testing.T, store KVStore, advance Clock) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405.000") + ":"

	t.Run("Put and Get", func(t *testing.T) {
		key := prefix + "plain"
		require.NoError(t, store.Put(ctx, key, "v1", 0))

		entry, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "v1", entry.Value)
		assert.Nil(t, entry.ExpiresAt, "no ttl means no expiry")
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "overwrite"
		require.NoError(t, store.Put(ctx, key, "old", time.Minute))
		require.NoError(t, store.Put(ctx, key, "new", 0))

		entry, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "new", entry.Value)
		assert.Nil(t, entry.ExpiresAt)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Expiry", func(t *testing.T) {
		key := prefix + "ttl"
		require.NoError(t, store.Put(ctx, key, "soon-gone", 10*time.Second))

		entry, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, entry.ExpiresAt)

		advance(11 * time.Second)

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		existed, err := store.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, existed, "expired entry is gone after the read")
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + "delete"
		require.NoError(t, store.Put(ctx, key, "v", 0))

		existed, err := store.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = store.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("Clear", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Put(ctx, fmt.Sprintf("%sclear-%d", prefix, i), "v", 0))
		}
		require.NoError(t, store.Clear(ctx))
		for i := 0; i < 3; i++ {
			_, err := store.Get(ctx, fmt.Sprintf("%sclear-%d", prefix, i))
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
	})
}

// RunConversationStoreContract verifies a ConversationStore implementation.
func RunConversationStoreContract(t *testing.T, store ConversationStore, advance Clock) {
	ctx := context.Background()
	sessionID := "contract-conv-" + time.Now().Format("20060102150405.000")

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.AwaitingConfirmation("CD555666777")))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingClaimConfirmation, loaded.Step)
		tn, ok := loaded.TrackingNumber()
		require.True(t, ok)
		assert.Equal(t, "CD555666777", tn)
	})

	t.Run("Overwrite Not Merge", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewConversation()))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingTracking, loaded.Step)
		assert.Nil(t, loaded.Pending)
	})

	t.Run("Isolation", func(t *testing.T) {
		conv := domain.AwaitingConfirmation("GH444555666")
		require.NoError(t, store.Save(ctx, sessionID, conv))
		conv.Pending.TrackingNumber = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Pending.TrackingNumber = "mutated-again"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "GH444555666", again.Pending.TrackingNumber)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Expires With Session", func(t *testing.T) {
		id := sessionID + "-ttl"
		conv := domain.NewConversation()
		exp := time.Now().Add(5 * time.Second)
		conv.ExpiresAt = &exp
		require.NoError(t, store.Save(ctx, id, conv))

		_, err := store.Load(ctx, id)
		require.NoError(t, err)

		advance(6 * time.Second)

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewConversation()))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Load after Delete should return ErrNotFound")
	})
}

// RunClaimStoreContract verifies a ClaimStore implementation.
func RunClaimStoreContract(t *testing.T, store ClaimStore) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	claim := domain.NewClaim("contract-claim-"+time.Now().Format("150405.000"), "user@example.com", "CD555666777", created)

	t.Run("Create and Get", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, claim))

		got, err := store.Get(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, claim.ID, got.ID)
		assert.Equal(t, claim.Email, got.Email)
		assert.Equal(t, claim.TrackingNumber, got.TrackingNumber)
		assert.Equal(t, domain.ClaimPending, got.Status)
		assert.True(t, claim.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("Immutable", func(t *testing.T) {
		dup := claim
		dup.Email = "other@example.com"
		err := store.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrClaimExists)

		got, err := store.Get(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", got.Email)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing-"+claim.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// RunDirectoryContract verifies a PackageDirectory seeded with domain.SeedPackages.
func RunDirectoryContract(t *testing.T, dir PackageDirectory) {
	ctx := context.Background()

	for tn, want := range domain.SeedPackages() {
		got, err := dir.Status(ctx, tn)
		require.NoError(t, err, tn)
		assert.Equal(t, want, got, tn)
	}

	_, err := dir.Status(ctx, "ZZ000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
