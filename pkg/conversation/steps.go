package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/courier/pkg/domain"
)

// dispatch applies one transition. A nil next state leaves the dialogue unchanged.
func (e *Engine) dispatch(ctx context.Context, conv *domain.Conversation, input string) (Reply, *domain.Conversation, error) {
	switch conv.Step {
	case domain.StepAwaitingTracking:
		return e.onTracking(ctx, input)
	case domain.StepAwaitingClaimConfirmation:
		return e.onConfirmation(ctx, conv, input)
	case domain.StepAwaitingClaimEmail:
		return e.onEmail(ctx, conv, input)
	}

	e.logger.Warn("Unknown conversation step, resetting", "step", conv.Step)
	return Reply{Message: msgClarify}, domain.NewConversation(), nil
}

// rejectInput answers a message that failed the size or encoding checks. The dialogue
// stays where it is and the reply is the one the current step gives for malformed input.
func (e *Engine) rejectInput(ctx context.Context, conv *domain.Conversation) (Reply, *domain.Conversation, error) {
	switch conv.Step {
	case domain.StepAwaitingTracking:
		return Reply{Message: msgInvalidFormat, Error: TagInvalidFormat}, nil, nil
	case domain.StepAwaitingClaimConfirmation:
		return Reply{Message: msgConfirmReprompt}, nil, nil
	case domain.StepAwaitingClaimEmail:
		return Reply{Message: msgInvalidEmail, Error: TagInvalidEmail}, nil, nil
	}
	return e.dispatch(ctx, conv, "")
}

func (e *Engine) onTracking(ctx context.Context, input string) (Reply, *domain.Conversation, error) {
	if !domain.ValidTrackingNumber(input) {
		return Reply{Message: msgInvalidFormat, Error: TagInvalidFormat}, nil, nil
	}

	status, err := e.packages.Status(ctx, input)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Message: msgNotFound(input), Error: TagNotFound}, nil, nil
	}
	if err != nil {
		return Reply{}, nil, fmt.Errorf("failed to look up %s: %w", input, err)
	}

	reply := Reply{
		Message:  msgStatusReport(input, status),
		Metadata: &Metadata{TrackingNumber: input, Status: status},
	}
	if status.Claimable() {
		return reply, domain.AwaitingConfirmation(input), nil
	}
	return reply, nil, nil
}

func (e *Engine) onConfirmation(ctx context.Context, conv *domain.Conversation, input string) (Reply, *domain.Conversation, error) {
	switch {
	case domain.IsAffirmative(input):
		if _, ok := conv.TrackingNumber(); !ok {
			return e.lostContext(conv.Step)
		}
		return Reply{Message: msgAskEmail}, domain.AwaitingEmail(conv.Pending), nil
	case domain.IsNegative(input):
		return Reply{Message: msgDeclined}, domain.NewConversation(), nil
	}
	return Reply{Message: msgConfirmReprompt}, nil, nil
}

func (e *Engine) onEmail(ctx context.Context, conv *domain.Conversation, input string) (Reply, *domain.Conversation, error) {
	if !domain.ValidEmail(input) {
		return Reply{Message: msgInvalidEmail, Error: TagInvalidEmail}, nil, nil
	}
	tn, ok := conv.TrackingNumber()
	if !ok {
		return e.lostContext(conv.Step)
	}

	// The status may have changed since the claim was offered.
	status, err := e.packages.Status(ctx, tn)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return Reply{}, nil, fmt.Errorf("failed to look up %s: %w", tn, err)
	}
	if err != nil || !status.Claimable() {
		e.logger.Info("Claim no longer eligible", "tracking_number", tn, "status", status)
		e.hooks.claimDenied(ctx, tn, TagNotEligible)
		return Reply{Message: msgNotEligible, Error: TagNotEligible}, domain.NewConversation(), nil
	}

	claim, err := e.issueClaim(ctx, input, tn)
	if err != nil {
		return Reply{}, nil, err
	}
	reply := Reply{
		Message: msgClaimFiledChat(input, claim.ID),
		Metadata: &Metadata{
			TrackingNumber: tn,
			ClaimID:        claim.ID,
			Email:          input,
		},
	}
	return reply, domain.NewConversation(), nil
}

func (e *Engine) lostContext(step domain.Step) (Reply, *domain.Conversation, error) {
	e.logger.Warn("Claim payload missing, resetting", "step", step)
	return Reply{Message: msgLostContext, Error: TagLostContext}, domain.NewConversation(), nil
}
