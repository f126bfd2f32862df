package http

import "github.com/aretw0/courier/pkg/conversation"

// Request fields are pointers so "required" tells an absent field from an empty one.
// Empty values reach the engine, which owns the session and format rules.

type chatMessageRequest struct {
	SessionID *string `json:"session_id" validate:"required,max=128"`
	Message   *string `json:"message" validate:"required"`
}

type trackRequest struct {
	SessionID      *string `json:"session_id" validate:"required,max=128"`
	TrackingNumber *string `json:"tracking_number" validate:"required,max=64"`
}

type claimRequest struct {
	SessionID      *string `json:"session_id" validate:"required,max=128"`
	Email          *string `json:"email" validate:"required,max=254"`
	TrackingNumber *string `json:"tracking_number" validate:"required,max=64"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type startResponse struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	BotMessage bool   `json:"bot_message"`
}

type messageResponse struct {
	Message    string                 `json:"message"`
	BotMessage bool                   `json:"bot_message"`
	Error      string                 `json:"error,omitempty"`
	Metadata   *conversation.Metadata `json:"metadata,omitempty"`
}

type trackResponse struct {
	Step           string `json:"step"`
	Message        string `json:"message"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Status         string `json:"status,omitempty"`
	CanClaim       *bool  `json:"can_claim,omitempty"`
	Error          string `json:"error,omitempty"`
}

type claimResponse struct {
	Step           string `json:"step"`
	Message        string `json:"message"`
	ClaimID        string `json:"claim_id,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Email          string `json:"email,omitempty"`
	Status         string `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
}
