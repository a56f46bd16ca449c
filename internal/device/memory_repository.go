package device

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint // keyed by token
}

// NewInMemoryRepository creates a new in-memory endpoint repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		endpoints: make(map[string]*Endpoint),
	}
}

// GetByToken retrieves an endpoint by token.
func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.endpoints[token]
	if !ok {
		return nil, ErrEndpointNotFound
	}

	cpy := *e
	return &cpy, nil
}

// ListByUser retrieves all endpoints for a user.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var endpoints []*Endpoint
	for _, e := range r.endpoints {
		if e.UserID == userID {
			cpy := *e
			endpoints = append(endpoints, &cpy)
		}
	}
	return endpoints, nil
}

// ListByUsers retrieves all endpoints for a set of users.
func (r *InMemoryRepository) ListByUsers(_ context.Context, userIDs []string) ([]*Endpoint, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var endpoints []*Endpoint
	for _, e := range r.endpoints {
		if _, ok := wanted[e.UserID]; ok {
			cpy := *e
			endpoints = append(endpoints, &cpy)
		}
	}
	return endpoints, nil
}

// Upsert creates or updates an endpoint keyed by token.
func (r *InMemoryRepository) Upsert(_ context.Context, endpoint *Endpoint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.endpoints[endpoint.Token]

	cpy := *endpoint
	if ok {
		cpy.CreatedAt = existing.CreatedAt
	}
	r.endpoints[endpoint.Token] = &cpy

	return !ok, nil
}

// DeleteOwned deletes a token only if it belongs to userID.
func (r *InMemoryRepository) DeleteOwned(_ context.Context, token, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.endpoints[token]; ok && e.UserID == userID {
		delete(r.endpoints, token)
	}
	return nil
}

// Delete unconditionally removes a token.
func (r *InMemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.endpoints, token)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
