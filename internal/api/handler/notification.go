package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/notification"
)

// NotificationHandler serves the per-user notification feed.
type NotificationHandler struct {
	store *notification.Store
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(store *notification.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// ListNotifications handles GET /v1/me/notifications?page=&pageSize=.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	result, err := h.store.ListForUser(r.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(w, r, "failed to list notifications")
		return
	}

	items := make([]models.NotificationResponse, 0, len(result.Items))
	for _, n := range result.Items {
		items = append(items, models.NewNotificationResponse(n))
	}

	response.JSON(w, r, http.StatusOK, models.NotificationListResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    result.Total,
	})
}

// UnreadCount handles GET /v1/me/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.store.CountUnread(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to count unread notifications")
		return
	}

	response.JSON(w, r, http.StatusOK, models.UnreadCountResponse{Count: count})
}

// MarkRead handles POST /v1/me/notifications/{notificationId}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "notificationId")

	err := h.store.MarkRead(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			response.NotFound(w, r, "notification not found")
			return
		}
		response.InternalError(w, r, "failed to mark notification read")
		return
	}

	response.NoContent(w, r)
}

// MarkAllRead handles POST /v1/me/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.store.MarkAllRead(r.Context(), userID); err != nil {
		response.InternalError(w, r, "failed to mark notifications read")
		return
	}

	response.NoContent(w, r)
}

// DeleteNotification handles DELETE /v1/me/notifications/{notificationId}.
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "notificationId")

	err := h.store.Delete(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			response.NotFound(w, r, "notification not found")
			return
		}
		response.InternalError(w, r, "failed to delete notification")
		return
	}

	response.NoContent(w, r)
}

// DeleteAllNotifications handles DELETE /v1/me/notifications.
func (h *NotificationHandler) DeleteAllNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.store.DeleteAll(r.Context(), userID); err != nil {
		response.InternalError(w, r, "failed to delete notifications")
		return
	}

	response.NoContent(w, r)
}
