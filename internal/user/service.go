package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/pawtrail/internal/events"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

// Publisher publishes domain events. Satisfied by events.Bus.
type Publisher interface {
	Publish(event events.Event)
}

// Service provides user profile and follow graph operations.
type Service struct {
	repo Repository
	bus  Publisher
}

// NewService creates a new user service.
func NewService(repo Repository, bus Publisher) *Service {
	return &Service{repo: repo, bus: bus}
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create creates a new user profile.
func (s *Service) Create(ctx context.Context, displayName string, lat, lon *float64) (*User, error) {
	now := time.Now()

	u := &User{
		ID:          "usr_" + uuid.New().String()[:22],
		DisplayName: displayName,
		Lat:         lat,
		Lon:         lon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// UpdateLocation sets or clears a user's home coordinates. Clearing them
// removes the user from radius targeting.
func (s *Service) UpdateLocation(ctx context.Context, id string, lat, lon *float64) error {
	return s.repo.UpdateLocation(ctx, id, lat, lon)
}

// ListGeotargetable retrieves all users eligible for radius targeting.
func (s *Service) ListGeotargetable(ctx context.Context) ([]*User, error) {
	return s.repo.ListGeotargetable(ctx)
}

// Follow records follower -> followee and announces it. Re-following is
// idempotent at the storage layer but still announces, matching the
// at-most-once-per-request delivery of the follow notification.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	follower, err := s.repo.Get(ctx, followerID)
	if err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, followeeID); err != nil {
		return err
	}

	if err := s.repo.Follow(ctx, followerID, followeeID); err != nil {
		return err
	}

	if s.bus != nil {
		s.bus.Publish(events.UserFollowed{
			FollowerID:   followerID,
			FollowerName: follower.DisplayName,
			FolloweeID:   followeeID,
		})
	}

	return nil
}

// Unfollow removes follower -> followee. Idempotent.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.repo.Unfollow(ctx, followerID, followeeID)
}

// ListFollowers retrieves the IDs of users following followeeID.
func (s *Service) ListFollowers(ctx context.Context, followeeID string) ([]string, error) {
	return s.repo.ListFollowers(ctx, followeeID)
}
