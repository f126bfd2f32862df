package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/courier/pkg/domain"
)

// Track reports the status of a package without touching the dialogue.
func (e *Engine) Track(ctx context.Context, sessionID, trackingNumber string) (TrackResult, error) {
	if _, err := e.authorize(ctx, sessionID, "track", reasonSessionChat); err != nil {
		return TrackResult{}, err
	}

	tn := NormalizeTrackingNumber(trackingNumber)
	if !domain.ValidTrackingNumber(tn) {
		return TrackResult{Step: TrackInvalidFormat, Message: msgInvalidFormat, Error: TagInvalidFormat}, nil
	}

	status, err := e.packages.Status(ctx, tn)
	if errors.Is(err, domain.ErrNotFound) {
		return TrackResult{Step: TrackNotFound, Message: msgNotFound(tn), Error: TagNotFound}, nil
	}
	if err != nil {
		return TrackResult{}, newError(KindInternal, "package lookup failed", err)
	}

	return TrackResult{
		Step:           TrackStatusFound,
		Message:        msgTrackSummary(tn, status),
		TrackingNumber: tn,
		Status:         status,
		CanClaim:       status.Claimable(),
	}, nil
}

// Status returns the raw status of a package. Malformed and unknown numbers are hard failures.
func (e *Engine) Status(ctx context.Context, sessionID, trackingNumber string) (domain.PackageStatus, error) {
	if _, err := e.authorize(ctx, sessionID, "status", reasonSession); err != nil {
		return "", err
	}
	return e.lookup(ctx, NormalizeTrackingNumber(trackingNumber))
}

// FileClaim creates a claim outside the dialogue. Packages that are not lost
// yield a denied result rather than an error.
func (e *Engine) FileClaim(ctx context.Context, sessionID, email, trackingNumber string) (ClaimResult, error) {
	if _, err := e.authorize(ctx, sessionID, "file_claim", reasonSession); err != nil {
		return ClaimResult{}, err
	}

	email = strings.TrimSpace(email)
	tn := NormalizeTrackingNumber(trackingNumber)
	if !domain.ValidTrackingNumber(tn) {
		return ClaimResult{}, newError(KindInvalidInput, reasonBadTracking, nil)
	}
	if !domain.ValidEmail(email) {
		return ClaimResult{}, newError(KindInvalidInput, reasonBadEmail, nil)
	}
	status, err := e.lookup(ctx, tn)
	if err != nil {
		return ClaimResult{}, err
	}

	if !status.Claimable() {
		e.hooks.claimDenied(ctx, tn, TagNotLost)
		return ClaimResult{
			Step:    ClaimDenied,
			Message: msgClaimDenied(status),
			Status:  status,
			Error:   TagNotLost,
		}, nil
	}

	claim, err := e.issueClaim(ctx, email, tn)
	if err != nil {
		return ClaimResult{}, newError(KindInternal, "failed to file claim", err)
	}
	return ClaimResult{
		Step:    ClaimCreated,
		Message: msgClaimFiledDirect(email),
		Claim:   &claim,
		Status:  status,
	}, nil
}

// Claim returns a stored claim. The session is optional, but a supplied one must be live.
func (e *Engine) Claim(ctx context.Context, claimID, sessionID string) (domain.Claim, error) {
	if sessionID != "" {
		if _, err := e.authorize(ctx, sessionID, "get_claim", reasonSession); err != nil {
			return domain.Claim{}, err
		}
	}

	claim, err := e.claims.Get(ctx, strings.TrimSpace(claimID))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Claim{}, newError(KindNotFound, reasonNoClaim, err)
	}
	if err != nil {
		return domain.Claim{}, newError(KindInternal, "claim lookup failed", err)
	}
	return claim, nil
}

// lookup validates the tracking number and resolves its status as a hard failure path.
func (e *Engine) lookup(ctx context.Context, tn string) (domain.PackageStatus, error) {
	if !domain.ValidTrackingNumber(tn) {
		return "", newError(KindInvalidInput, reasonBadTracking, nil)
	}
	status, err := e.packages.Status(ctx, tn)
	if errors.Is(err, domain.ErrNotFound) {
		return "", newError(KindNotFound, reasonNoPackage, err)
	}
	if err != nil {
		return "", newError(KindInternal, "package lookup failed", err)
	}
	return status, nil
}
