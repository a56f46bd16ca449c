package models

import (
	"time"

	"github.com/pawtrail/pawtrail/internal/claim"
)

// CreateClaimRequest is the request body for claiming a reported pet.
type CreateClaimRequest struct {
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// ClaimResponse is one claim on a report.
type ClaimResponse struct {
	ID         string    `json:"id"`
	AlertID    string    `json:"alertId"`
	ClaimantID string    `json:"claimantId"`
	Message    string    `json:"message,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewClaimResponse converts a claim to its API representation.
func NewClaimResponse(c *claim.Claim) ClaimResponse {
	return ClaimResponse{
		ID:         c.ID,
		AlertID:    c.AlertID,
		ClaimantID: c.ClaimantID,
		Message:    c.Message,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
	}
}

// ClaimListResponse is a list of claims on a report.
type ClaimListResponse struct {
	Items []ClaimResponse `json:"items"`
}
