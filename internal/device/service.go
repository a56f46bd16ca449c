package device

import (
	"context"
	"time"
)

// Registry provides device endpoint operations for registration, lookup
// and pruning. All mutations are single atomic storage operations; there
// is no cross-request locking.
type Registry struct {
	repo Repository
}

// NewRegistry creates a new endpoint registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// Register upserts an endpoint by token. The transport family is derived
// from the token shape here, not taken from the caller.
func (s *Registry) Register(ctx context.Context, token, userID string, deviceID *string, platform Platform) (*Endpoint, error) {
	now := time.Now()

	endpoint := &Endpoint{
		Token:     token,
		UserID:    userID,
		DeviceID:  deviceID,
		Platform:  platform,
		Family:    Classify(token),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.repo.Upsert(ctx, endpoint); err != nil {
		return nil, err
	}

	return endpoint, nil
}

// Unregister removes the token if it currently belongs to userID.
// Idempotent: removing a missing or already-foreign token succeeds.
func (s *Registry) Unregister(ctx context.Context, token, userID string) error {
	return s.repo.DeleteOwned(ctx, token, userID)
}

// TokensFor returns all endpoints registered for a user.
func (s *Registry) TokensFor(ctx context.Context, userID string) ([]*Endpoint, error) {
	return s.repo.ListByUser(ctx, userID)
}

// TokensForMany returns all endpoints registered for a set of users.
func (s *Registry) TokensForMany(ctx context.Context, userIDs []string) ([]*Endpoint, error) {
	return s.repo.ListByUsers(ctx, userIDs)
}

// Invalidate unconditionally removes a token. Used when a transport
// reports the endpoint as permanently dead.
func (s *Registry) Invalidate(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}
