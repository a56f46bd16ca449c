package user

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]*User
	follows map[string]map[string]bool // followeeID -> followerID -> true
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[string]*User),
		follows: make(map[string]map[string]bool),
	}
}

// Get retrieves a user by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *u
	return &copied, nil
}

// Create creates a new user.
func (r *InMemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *u
	r.users[u.ID] = &copied
	return nil
}

// UpdateLocation sets or clears a user's home coordinates.
func (r *InMemoryRepository) UpdateLocation(_ context.Context, id string, lat, lon *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	u.Lat = lat
	u.Lon = lon
	u.UpdatedAt = time.Now()
	return nil
}

// ListGeotargetable retrieves all users carrying coordinates.
func (r *InMemoryRepository) ListGeotargetable(_ context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*User
	for _, u := range r.users {
		if u.Lat == nil || u.Lon == nil {
			continue
		}
		copied := *u
		users = append(users, &copied)
	}

	return users, nil
}

// Follow records follower -> followee. Idempotent.
func (r *InMemoryRepository) Follow(_ context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	followers, ok := r.follows[followeeID]
	if !ok {
		followers = make(map[string]bool)
		r.follows[followeeID] = followers
	}
	followers[followerID] = true
	return nil
}

// Unfollow removes follower -> followee. Idempotent.
func (r *InMemoryRepository) Unfollow(_ context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.follows[followeeID], followerID)
	return nil
}

// ListFollowers retrieves the IDs of users following followeeID.
func (r *InMemoryRepository) ListFollowers(_ context.Context, followeeID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var followers []string
	for id := range r.follows[followeeID] {
		followers = append(followers, id)
	}

	return followers, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
