// Package notification provides the durable per-user notification record
// store. Records are the source of truth for the notification feed; push
// delivery is only an acceleration channel on top of them.
package notification

import (
	"errors"
	"time"
)

// Store errors.
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Type categorizes a notification for client-side routing.
type Type string

const (
	TypeLostPetNearby  Type = "lost_pet_nearby"
	TypeFoundPetNearby Type = "found_pet_nearby"
	TypeClaimUpdate    Type = "claim_update"
	TypeChatMessage    Type = "chat_message"
	TypeNewFollower    Type = "new_follower"
)

// Notification is one record in a user's notification feed. Immutable
// after creation except for Read, which only ever transitions false to
// true.
type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Message   string
	Data      map[string]any
	ImageURL  *string
	SenderID  *string
	Read      bool
	CreatedAt time.Time
}

// CreateParams holds the fields for creating a notification record.
type CreateParams struct {
	UserID   string
	Type     Type
	Title    string
	Message  string
	Data     map[string]any
	ImageURL *string
	SenderID *string
}

// Page is one page of a user's notification feed plus the total count
// across all pages.
type Page struct {
	Items []*Notification
	Total int
}
