package conversation

import (
	"context"

	"github.com/aretw0/courier/pkg/domain"
)

// Transition describes one handled message.
type Transition struct {
	SessionID string
	From      domain.Step
	To        domain.Step
	Error     ErrorTag
}

// Hooks are optional observers of engine activity. They run synchronously and
// must not block.
type Hooks struct {
	OnTransition   func(ctx context.Context, t Transition)
	OnClaimCreated func(ctx context.Context, claim domain.Claim)
	OnClaimDenied  func(ctx context.Context, trackingNumber string, tag ErrorTag)
	OnUnauthorized func(ctx context.Context, op string)
}

func (h Hooks) transition(ctx context.Context, t Transition) {
	if h.OnTransition != nil {
		h.OnTransition(ctx, t)
	}
}

func (h Hooks) claimCreated(ctx context.Context, c domain.Claim) {
	if h.OnClaimCreated != nil {
		h.OnClaimCreated(ctx, c)
	}
}

func (h Hooks) claimDenied(ctx context.Context, tn string, tag ErrorTag) {
	if h.OnClaimDenied != nil {
		h.OnClaimDenied(ctx, tn, tag)
	}
}

func (h Hooks) unauthorized(ctx context.Context, op string) {
	if h.OnUnauthorized != nil {
		h.OnUnauthorized(ctx, op)
	}
}
