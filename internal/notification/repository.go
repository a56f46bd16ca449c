package notification

import "context"

// Repository defines the interface for notification persistence. Every
// operation that touches an existing record is scoped by userID; a record
// belonging to another user behaves as if it does not exist.
type Repository interface {
	// Create persists a new notification record.
	Create(ctx context.Context, n *Notification) error

	// ListForUser retrieves one page of a user's notifications, newest
	// first, along with the total count.
	ListForUser(ctx context.Context, userID string, page, pageSize int) (*Page, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead marks one notification read. Returns
	// ErrNotificationNotFound if the record does not exist or belongs to
	// another user.
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead marks all of a user's notifications read. Idempotent.
	MarkAllRead(ctx context.Context, userID string) error

	// Delete removes one notification owned by the user.
	Delete(ctx context.Context, id, userID string) error

	// DeleteAll removes all of a user's notifications.
	DeleteAll(ctx context.Context, userID string) error
}
