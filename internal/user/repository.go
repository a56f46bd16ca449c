package user

import "context"

// Repository defines the interface for user persistence.
type Repository interface {
	// Get retrieves a user by ID.
	Get(ctx context.Context, id string) (*User, error)

	// Create creates a new user.
	Create(ctx context.Context, u *User) error

	// UpdateLocation sets or clears a user's home coordinates.
	UpdateLocation(ctx context.Context, id string, lat, lon *float64) error

	// ListGeotargetable retrieves all users carrying coordinates.
	// Users without coordinates are not radius targets and are omitted.
	ListGeotargetable(ctx context.Context) ([]*User, error)

	// Follow records follower -> followee. Idempotent.
	Follow(ctx context.Context, followerID, followeeID string) error

	// Unfollow removes follower -> followee. Idempotent.
	Unfollow(ctx context.Context, followerID, followeeID string) error

	// ListFollowers retrieves the IDs of users following followeeID.
	ListFollowers(ctx context.Context, followeeID string) ([]string, error)
}
