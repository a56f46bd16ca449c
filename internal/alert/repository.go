package alert

import "context"

// Repository defines the interface for alert persistence.
type Repository interface {
	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*Alert, error)

	// Create creates a new alert.
	Create(ctx context.Context, a *Alert) error

	// ListActive retrieves all active alerts, newest first.
	ListActive(ctx context.Context) ([]*Alert, error)

	// UpdateStatus transitions an alert's status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
