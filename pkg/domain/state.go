package domain

import "time"

// Step is the position of a session in the claim dialogue.
type Step string

const (
	StepAwaitingTracking          Step = "awaiting_tracking"
	StepAwaitingClaimConfirmation Step = "awaiting_claim_confirmation"
	StepAwaitingClaimEmail        Step = "awaiting_claim_email"
)

// Known reports whether the step is one the engine can dispatch on.
func (s Step) Known() bool {
	switch s {
	case StepAwaitingTracking, StepAwaitingClaimConfirmation, StepAwaitingClaimEmail:
		return true
	}
	return false
}

// NeedsClaim reports whether the step only makes sense with a pending claim payload.
func (s Step) NeedsClaim() bool {
	return s == StepAwaitingClaimConfirmation || s == StepAwaitingClaimEmail
}

// PendingClaim is the payload carried while a claim is being collected.
type PendingClaim struct {
	TrackingNumber string `json:"tracking_number"`
}

// Conversation is the dialogue state of a single session.
// Pending is set only for the claim steps; the zero value is a fresh dialogue.
type Conversation struct {
	Step    Step          `json:"step"`
	Pending *PendingClaim `json:"pending,omitempty"`

	// ExpiresAt mirrors the owning session's expiry so stores can drop the state with it.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewConversation returns a dialogue waiting for a tracking number.
func NewConversation() *Conversation {
	return &Conversation{Step: StepAwaitingTracking}
}

// AwaitingConfirmation returns the state that offers a claim for trackingNumber.
func AwaitingConfirmation(trackingNumber string) *Conversation {
	return &Conversation{
		Step:    StepAwaitingClaimConfirmation,
		Pending: &PendingClaim{TrackingNumber: trackingNumber},
	}
}

// AwaitingEmail returns the state that collects the claimant's e-mail.
// A nil payload is kept as is; the email step recovers from it.
func AwaitingEmail(pending *PendingClaim) *Conversation {
	c := &Conversation{Step: StepAwaitingClaimEmail}
	if pending != nil {
		p := *pending
		c.Pending = &p
	}
	return c
}

// TrackingNumber returns the pending tracking number, if any.
func (c *Conversation) TrackingNumber() (string, bool) {
	if c == nil || c.Pending == nil || c.Pending.TrackingNumber == "" {
		return "", false
	}
	return c.Pending.TrackingNumber, true
}

// Expired reports whether the state outlived its session at now.
func (c *Conversation) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	out := *c
	if c.Pending != nil {
		p := *c.Pending
		out.Pending = &p
	}
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}
