package memory

import (
	"context"
	"sync"

	"github.com/aretw0/courier/pkg/domain"
)

// ClaimStore implements ports.ClaimStore in memory.
type ClaimStore struct {
	data map[string]domain.Claim
	mu   sync.RWMutex
}

// NewClaimStore creates an empty claim store.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{data: make(map[string]domain.Claim)}
}

// Create inserts claim unless its ID is already taken.
func (s *ClaimStore) Create(ctx context.Context, claim domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[claim.ID]; exists {
		return domain.ErrClaimExists
	}
	s.data[claim.ID] = claim
	return nil
}

// Get returns the claim with the given ID.
func (s *ClaimStore) Get(ctx context.Context, claimID string) (domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.data[claimID]
	if !ok {
		return domain.Claim{}, domain.ErrNotFound
	}
	return claim, nil
}

// Len returns the number of stored claims.
func (s *ClaimStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
