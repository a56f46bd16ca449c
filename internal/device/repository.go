package device

import "context"

// Repository defines the interface for endpoint persistence.
type Repository interface {
	// GetByToken retrieves an endpoint by token.
	GetByToken(ctx context.Context, token string) (*Endpoint, error)

	// ListByUser retrieves all endpoints for a user.
	ListByUser(ctx context.Context, userID string) ([]*Endpoint, error)

	// ListByUsers retrieves all endpoints for a set of users.
	ListByUsers(ctx context.Context, userIDs []string) ([]*Endpoint, error)

	// Upsert creates or updates an endpoint keyed by token. An existing
	// token registered under a different user is reassigned, never
	// duplicated. Returns true if a new row was created.
	Upsert(ctx context.Context, endpoint *Endpoint) (created bool, err error)

	// DeleteOwned deletes a token only if it currently belongs to userID.
	// Deleting a missing or foreign token is a no-op.
	DeleteOwned(ctx context.Context, token, userID string) error

	// Delete unconditionally removes a token.
	Delete(ctx context.Context, token string) error
}
