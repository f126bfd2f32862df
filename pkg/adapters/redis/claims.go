package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/courier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ClaimStore implements ports.ClaimStore using Redis.
// SETNX guarantees a claim ID is written at most once.
type ClaimStore struct {
	base
}

// NewClaimStore creates a claim store on an existing client.
func NewClaimStore(client *backend.Client, opts ...Option) *ClaimStore {
	return &ClaimStore{base: newBase(client, opts)}
}

func (s *ClaimStore) key(claimID string) string {
	return s.prefix + "claim:" + claimID
}

// Create writes the claim unless the ID is taken.
func (s *ClaimStore) Create(ctx context.Context, claim domain.Claim) error {
	data, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("failed to marshal claim: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(claim.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save claim to redis: %w", err)
	}
	if !ok {
		return domain.ErrClaimExists
	}
	return nil
}

// Get retrieves a claim by ID.
func (s *ClaimStore) Get(ctx context.Context, claimID string) (domain.Claim, error) {
	val, err := s.client.Get(ctx, s.key(claimID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Claim{}, domain.ErrNotFound
		}
		return domain.Claim{}, fmt.Errorf("failed to get claim from redis: %w", err)
	}

	var claim domain.Claim
	if err := json.Unmarshal(val, &claim); err != nil {
		return domain.Claim{}, fmt.Errorf("failed to unmarshal claim: %w", err)
	}
	return claim, nil
}
