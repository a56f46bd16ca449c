// Package handler provides HTTP handlers for the PawTrail API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/device"
)

// DeviceHandler handles push endpoint registration.
type DeviceHandler struct {
	registry *device.Registry
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(registry *device.Registry) *DeviceHandler {
	return &DeviceHandler{registry: registry}
}

// RegisterDevice handles POST /v1/me/devices.
// Registration is an upsert: re-registering the same token refreshes its
// metadata, and a token previously owned by another user moves to the
// caller.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if fieldErrors := models.Validate(req); fieldErrors != nil {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}

	endpoint, err := h.registry.Register(r.Context(), req.Token, userID, req.DeviceID, device.NormalizePlatform(req.Platform))
	if err != nil {
		response.InternalError(w, r, "failed to register device")
		return
	}

	resp := models.NewDeviceResponse(endpoint)
	response.Created(w, r, "", resp)
}

// ListDevices handles GET /v1/me/devices.
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	endpoints, err := h.registry.TokensFor(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to list devices")
		return
	}

	items := make([]models.DeviceResponse, 0, len(endpoints))
	for _, e := range endpoints {
		items = append(items, models.NewDeviceResponse(e))
	}

	response.JSON(w, r, http.StatusOK, models.DeviceListResponse{Items: items})
}

// UnregisterDevice handles DELETE /v1/me/devices/{token}.
// Idempotent: removing a missing token, or one that meanwhile moved to
// another user, still returns 204.
func (h *DeviceHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, r, "missing device token", nil)
		return
	}

	if err := h.registry.Unregister(r.Context(), token, userID); err != nil {
		response.InternalError(w, r, "failed to unregister device")
		return
	}

	response.NoContent(w, r)
}
