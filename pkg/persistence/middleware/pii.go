package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
)

type auditMiddleware struct {
	next   ports.ClaimStore
	logger *slog.Logger
}

// NewAuditMiddleware logs every claim write and lookup with the claimant's email masked.
func NewAuditMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ClaimStore) ports.ClaimStore {
		return &auditMiddleware{next: next, logger: logger}
	}
}

func (m *auditMiddleware) Create(ctx context.Context, claim domain.Claim) error {
	err := m.next.Create(ctx, claim)
	attrs := []any{
		"claim_id", claim.ID,
		"tracking_number", claim.TrackingNumber,
		"email", MaskEmail(claim.Email),
	}
	if err != nil {
		m.logger.Error("claim write failed", append(attrs, "err", err)...)
		return err
	}
	m.logger.Info("claim stored", attrs...)
	return nil
}

func (m *auditMiddleware) Get(ctx context.Context, claimID string) (domain.Claim, error) {
	claim, err := m.next.Get(ctx, claimID)
	if err != nil {
		m.logger.Debug("claim lookup missed", "claim_id", claimID, "err", err)
		return claim, err
	}
	m.logger.Debug("claim read", "claim_id", claimID, "email", MaskEmail(claim.Email))
	return claim, nil
}

// MaskEmail keeps the first character of the local part and the whole domain:
// "jane@example.com" becomes "j***@example.com". Values without '@' are fully masked.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	first := []rune(email[:at])[0]
	return string(first) + "***" + email[at:]
}
