package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store provides notification record operations. Every read and mutation
// is scoped to the owning user; other users' records are unreachable
// regardless of caller.
type Store struct {
	repo Repository
}

// NewStore creates a new notification store.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Create persists a new notification record and returns it. It either
// succeeds or returns a storage error; records are never silently dropped.
func (s *Store) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	n := &Notification{
		ID:        "ntf_" + uuid.New().String()[:22],
		UserID:    params.UserID,
		Type:      params.Type,
		Title:     params.Title,
		Message:   params.Message,
		Data:      params.Data,
		ImageURL:  params.ImageURL,
		SenderID:  params.SenderID,
		Read:      false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// ListForUser retrieves one page of a user's notification feed.
func (s *Store) ListForUser(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListForUser(ctx, userID, page, pageSize)
}

// CountUnread returns the number of unread notifications for a user.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one notification read for its owner.
func (s *Store) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks all of a user's notifications read. Idempotent.
func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification owned by the user.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// DeleteAll removes all of a user's notifications.
func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	return s.repo.DeleteAll(ctx, userID)
}
