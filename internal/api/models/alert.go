package models

import (
	"time"

	"github.com/pawtrail/pawtrail/internal/alert"
)

// CreateAlertRequest is the request body for filing a lost/found report.
type CreateAlertRequest struct {
	Kind        string   `json:"kind" validate:"required,oneof=lost found"`
	Species     string   `json:"species" validate:"required"`
	PetName     string   `json:"petName,omitempty" validate:"omitempty,max=100"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	RadiusKm    float64  `json:"radiusKm,omitempty" validate:"omitempty,gt=0,lte=100"`
	PhotoURL    *string  `json:"photoUrl,omitempty" validate:"omitempty,url"`
}

// AlertResponse is one lost/found report.
type AlertResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Species     string    `json:"species"`
	PetName     string    `json:"petName,omitempty"`
	Description string    `json:"description,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	RadiusKm    float64   `json:"radiusKm"`
	PhotoURL    *string   `json:"photoUrl,omitempty"`
	ReporterID  string    `json:"reporterId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAlertResponse converts an alert to its API representation.
func NewAlertResponse(a *alert.Alert) AlertResponse {
	return AlertResponse{
		ID:          a.ID,
		Kind:        string(a.Kind),
		Species:     a.Species,
		PetName:     a.PetName,
		Description: a.Description,
		Lat:         a.Lat,
		Lon:         a.Lon,
		RadiusKm:    a.RadiusKm,
		PhotoURL:    a.PhotoURL,
		ReporterID:  a.ReporterID,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
	}
}

// AlertListResponse is a list of reports.
type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
}
