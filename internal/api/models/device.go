package models

import (
	"time"

	"github.com/pawtrail/pawtrail/internal/device"
)

// RegisterDeviceRequest is the request body for registering a push token.
type RegisterDeviceRequest struct {
	Token    string  `json:"token" validate:"required"`
	DeviceID *string `json:"deviceId,omitempty"`
	Platform string  `json:"platform,omitempty" validate:"omitempty,oneof=ios android unknown"`
}

// DeviceResponse is one registered push endpoint.
type DeviceResponse struct {
	Token     string    `json:"token"`
	DeviceID  *string   `json:"deviceId,omitempty"`
	Platform  string    `json:"platform"`
	Family    string    `json:"transportFamily"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDeviceResponse converts a device endpoint to its API representation.
func NewDeviceResponse(e *device.Endpoint) DeviceResponse {
	return DeviceResponse{
		Token:     e.Token,
		DeviceID:  e.DeviceID,
		Platform:  string(e.Platform),
		Family:    string(e.Family),
		UpdatedAt: e.UpdatedAt,
	}
}

// DeviceListResponse is the list of a user's registered endpoints.
type DeviceListResponse struct {
	Items []DeviceResponse `json:"items"`
}
