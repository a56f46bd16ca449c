package alert

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
	alerts map[string]*Alert
}

// NewInMemoryRepository creates a new in-memory alert repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		alerts: make(map[string]*Alert),
	}
}

// Get retrieves an alert by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	copied := *a
	return &copied, nil
}

// Create creates a new alert.
func (r *InMemoryRepository) Create(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *a
	r.alerts[a.ID] = &copied
	return nil
}

// ListActive retrieves all active alerts, newest first.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []*Alert
	for _, a := range r.alerts {
		if a.Status != StatusActive {
			continue
		}
		copied := *a
		alerts = append(alerts, &copied)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	return alerts, nil
}

// UpdateStatus transitions an alert's status.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}

	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
