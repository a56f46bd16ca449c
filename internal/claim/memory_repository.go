package claim

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	claims map[string]*Claim
}

// NewInMemoryRepository creates a new in-memory claim repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		claims: make(map[string]*Claim),
	}
}

// Get retrieves a claim by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.claims[id]
	if !ok {
		return nil, ErrClaimNotFound
	}

	copied := *c
	return &copied, nil
}

// Create creates a new claim.
func (r *InMemoryRepository) Create(_ context.Context, c *Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *c
	r.claims[c.ID] = &copied
	return nil
}

// ListByAlert retrieves all claims on an alert, newest first.
func (r *InMemoryRepository) ListByAlert(_ context.Context, alertID string) ([]*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var claims []*Claim
	for _, c := range r.claims {
		if c.AlertID != alertID {
			continue
		}
		copied := *c
		claims = append(claims, &copied)
	}

	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})

	return claims, nil
}

// UpdateStatus transitions a claim's status.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.claims[id]
	if !ok {
		return ErrClaimNotFound
	}

	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
