package claim

import "context"

// Repository defines the interface for claim persistence.
type Repository interface {
	// Get retrieves a claim by ID.
	Get(ctx context.Context, id string) (*Claim, error)

	// Create creates a new claim.
	Create(ctx context.Context, c *Claim) error

	// ListByAlert retrieves all claims on an alert, newest first.
	ListByAlert(ctx context.Context, alertID string) ([]*Claim, error)

	// UpdateStatus transitions a claim's status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
