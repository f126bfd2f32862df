package conversation

import (
	"fmt"

	"github.com/aretw0/courier/pkg/domain"
)

const (
	msgGreeting = "Hello! I'm your package tracking assistant. Please provide a tracking number to get started (e.g., AB123456789)."

	msgInvalidFormat = "Invalid tracking number format. Please enter a valid tracking number (2 uppercase letters followed by 9 digits, e.g., AB123456789)."

	msgAskEmail        = "Great! To file the claim, please provide your email address."
	msgDeclined        = "Okay, no problem. Is there anything else I can help you with? You can provide another tracking number."
	msgConfirmReprompt = "I didn't quite understand. Would you like to file a claim for your lost package? Please reply 'yes' or 'no'."

	msgInvalidEmail = "That doesn't look like a valid email address. Please provide a valid email (e.g., user@example.com)."
	msgLostContext  = "Sorry, I lost track of the tracking number. Please start over by providing the tracking number."
	msgNotEligible  = "Sorry, this package is no longer eligible for a claim. Please provide another tracking number if you need assistance."

	msgClarify = "I'm not sure what you're asking. Please provide a tracking number to track a package."

	// Reasons of hard failures.
	reasonSessionChat = "Invalid or expired session. Please start a new chat session."
	reasonSession     = "Invalid or expired session"
	reasonBadTracking = "Invalid tracking number format"
	reasonBadEmail    = "Invalid email address"
	reasonNoPackage   = "Tracking number not found"
	reasonNoClaim     = "Claim not found"
)

func msgNotFound(tn string) string {
	return fmt.Sprintf("Tracking number %s was not found in our system. Please verify the number and try again.", tn)
}

// msgStatusReport is the conversational status message, which invites a follow-up.
func msgStatusReport(tn string, st domain.PackageStatus) string {
	switch st {
	case domain.StatusInTransit:
		return fmt.Sprintf("Your package %s is currently in transit and on its way to you. Is there anything else I can help you with? You can provide another tracking number.", tn)
	case domain.StatusDelivered:
		return fmt.Sprintf("Your package %s has been delivered. Is there anything else I can help you with? You can provide another tracking number.", tn)
	case domain.StatusLost:
		return fmt.Sprintf("Unfortunately, package %s appears to be lost. Would you like to file a claim? (Please reply 'yes' or 'no')", tn)
	}
	return fmt.Sprintf("Package status: %s. Is there anything else I can help you with?", st)
}

// msgTrackSummary is the shorter wording of the direct track query.
func msgTrackSummary(tn string, st domain.PackageStatus) string {
	switch st {
	case domain.StatusInTransit:
		return fmt.Sprintf("Your package %s is currently in transit and on its way to you.", tn)
	case domain.StatusDelivered:
		return fmt.Sprintf("Your package %s has been delivered.", tn)
	case domain.StatusLost:
		return fmt.Sprintf("Unfortunately, package %s appears to be lost. Would you like to file a claim?", tn)
	}
	return "Status unknown"
}

func msgClaimFiledChat(email, claimID string) string {
	return fmt.Sprintf("Your claim has been successfully filed! We'll contact you at %s with updates. Your claim ID is %s. Is there anything else I can help you with?", email, claimID)
}

func msgClaimFiledDirect(email string) string {
	return fmt.Sprintf("Your claim has been successfully filed. We'll contact you at %s with updates.", email)
}

func msgClaimDenied(st domain.PackageStatus) string {
	return fmt.Sprintf("Claims can only be filed for lost packages. This package is currently: %s", st)
}
