package conversation

import (
	"github.com/aretw0/courier/pkg/domain"
)

// Metadata is structured data attached to a reply.
type Metadata struct {
	TrackingNumber string               `json:"tracking_number,omitempty"`
	Status         domain.PackageStatus `json:"status,omitempty"`
	ClaimID        string               `json:"claim_id,omitempty"`
	Email          string               `json:"email,omitempty"`
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Message  string
	Error    ErrorTag
	Metadata *Metadata

	// Step is the dialogue step after the message was handled.
	Step domain.Step
}

// Greeting is the result of starting (or restarting) a chat.
type Greeting struct {
	Session domain.Session
	Created bool
	Message string
}

// TrackStep is the outcome of a direct track query.
type TrackStep string

const (
	TrackInvalidFormat TrackStep = "invalid_format"
	TrackNotFound      TrackStep = "not_found"
	TrackStatusFound   TrackStep = "status_found"
)

// TrackResult answers a direct track query.
type TrackResult struct {
	Step           TrackStep
	Message        string
	TrackingNumber string
	Status         domain.PackageStatus
	CanClaim       bool
	Error          ErrorTag
}

// ClaimStep is the outcome of a direct claim request.
type ClaimStep string

const (
	ClaimDenied  ClaimStep = "claim_denied"
	ClaimCreated ClaimStep = "claim_created"
)

// ClaimResult answers a direct claim request.
type ClaimResult struct {
	Step    ClaimStep
	Message string
	Claim   *domain.Claim
	Status  domain.PackageStatus
	Error   ErrorTag
}
