package notification

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewInMemoryRepository creates a new in-memory notification repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		notifications: make(map[string]*Notification),
	}
}

// Create persists a new notification record.
func (r *InMemoryRepository) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *n
	r.notifications[n.ID] = &cpy
	return nil
}

// ListForUser retrieves one page of a user's notifications, newest first.
func (r *InMemoryRepository) ListForUser(_ context.Context, userID string, page, pageSize int) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			cpy := *n
			all = append(all, &cpy)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &Page{Items: all[start:end], Total: total}, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *InMemoryRepository) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notification read.
func (r *InMemoryRepository) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}

	n.Read = true
	return nil
}

// MarkAllRead marks all of a user's notifications read.
func (r *InMemoryRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// Delete removes one notification owned by the user.
func (r *InMemoryRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotificationNotFound
	}

	delete(r.notifications, id)
	return nil
}

// DeleteAll removes all of a user's notifications.
func (r *InMemoryRepository) DeleteAll(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.notifications {
		if n.UserID == userID {
			delete(r.notifications, id)
		}
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
