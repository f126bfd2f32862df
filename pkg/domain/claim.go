package domain

import "time"

// ClaimStatus is the processing status of a claim.
type ClaimStatus string

// ClaimPending is the status every claim is created with.
const ClaimPending ClaimStatus = "pending"

// Claim is a compensation request for a lost package. It is never modified after creation.
type Claim struct {
	ID             string      `json:"claim_id" dynamodbav:"claim_id"`
	Email          string      `json:"email" dynamodbav:"email"`
	TrackingNumber string      `json:"tracking_number" dynamodbav:"tracking_number"`
	CreatedAt      time.Time   `json:"created_at" dynamodbav:"created_at"`
	Status         ClaimStatus `json:"status" dynamodbav:"status"`
}

// NewClaim builds a pending claim.
func NewClaim(id, email, trackingNumber string, now time.Time) Claim {
	return Claim{
		ID:             id,
		Email:          email,
		TrackingNumber: trackingNumber,
		CreatedAt:      now,
		Status:         ClaimPending,
	}
}
