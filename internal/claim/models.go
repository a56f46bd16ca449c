// Package claim provides "this is my pet" claims filed against alerts and
// the reporter's accept/reject decisions on them.
package claim

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrClaimNotFound = errors.New("claim not found")
)

// Status is the claim lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Claim is a claim on an alert.
type Claim struct {
	// ID is the unique claim identifier (format: clm_XXXX).
	ID string

	// AlertID is the alert being claimed.
	AlertID string

	// ClaimantID is the user asserting the pet is theirs.
	ClaimantID string

	// Message is the claimant's supporting text.
	Message string

	// Status is "pending", "accepted" or "rejected".
	Status Status

	// CreatedAt is when the claim was filed.
	CreatedAt time.Time

	// UpdatedAt is when the claim was last updated.
	UpdatedAt time.Time
}
