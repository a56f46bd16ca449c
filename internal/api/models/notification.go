package models

import (
	"time"

	"github.com/pawtrail/pawtrail/internal/notification"
)

// NotificationResponse is one entry in a user's notification feed.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	ImageURL  *string        `json:"imageUrl,omitempty"`
	SenderID  *string        `json:"senderId,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewNotificationResponse converts a notification to its API
// representation.
func NewNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		ImageURL:  n.ImageURL,
		SenderID:  n.SenderID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse is one page of the notification feed.
type NotificationListResponse struct {
	Items    []NotificationResponse `json:"items"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
	Total    int                    `json:"total"`
}

// UnreadCountResponse reports the unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
