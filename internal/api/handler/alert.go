package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/geo"
)

// AlertHandler handles lost/found pet reports.
type AlertHandler struct {
	alerts *alert.Service
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *alert.Service) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// CreateAlert handles POST /v1/alerts.
// The response returns as soon as the report is stored; nearby-user
// matching and push delivery run behind the event bus.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if fieldErrors := models.Validate(req); fieldErrors != nil {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		response.BadRequest(w, r, "lat and lon must be provided together", nil)
		return
	}

	created, err := h.alerts.Create(r.Context(), alert.CreateParams{
		Kind:        alert.Kind(req.Kind),
		Species:     req.Species,
		PetName:     req.PetName,
		Description: req.Description,
		Lat:         req.Lat,
		Lon:         req.Lon,
		RadiusKm:    req.RadiusKm,
		PhotoURL:    req.PhotoURL,
		ReporterID:  userID,
	})
	if err != nil {
		response.InternalError(w, r, "failed to create alert")
		return
	}

	response.Created(w, r, "/v1/alerts/"+created.ID, models.NewAlertResponse(created))
}

// GetAlert handles GET /v1/alerts/{alertId}.
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	a, err := h.alerts.Get(r.Context(), chi.URLParam(r, "alertId"))
	if err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			response.NotFound(w, r, "alert not found")
			return
		}
		response.InternalError(w, r, "failed to get alert")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAlertResponse(a))
}

// ListNearby handles GET /v1/alerts/nearby?lat=&lon=&radiusKm=.
// Reports without coordinates are included in the listing even though
// they can never match a radius.
func (h *AlertHandler) ListNearby(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", nil)
		return
	}

	radiusKm := alert.DefaultRadiusKm
	if raw := r.URL.Query().Get("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "radiusKm must be a positive number", nil)
			return
		}
		radiusKm = parsed
	}

	alerts, err := h.alerts.ListNearby(r.Context(), geo.Coord{Lat: lat, Lon: lon}, radiusKm)
	if err != nil {
		response.InternalError(w, r, "failed to list alerts")
		return
	}

	items := make([]models.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, models.NewAlertResponse(a))
	}

	response.JSON(w, r, http.StatusOK, models.AlertListResponse{Items: items})
}

// ResolveAlert handles POST /v1/alerts/{alertId}/resolve.
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resolved, err := h.alerts.Resolve(r.Context(), chi.URLParam(r, "alertId"), userID)
	if err != nil {
		switch {
		case errors.Is(err, alert.ErrAlertNotFound):
			response.NotFound(w, r, "alert not found")
		case errors.Is(err, alert.ErrNotReporter):
			response.Forbidden(w, r, "only the reporter can resolve an alert")
		case errors.Is(err, alert.ErrAlreadyClosed):
			response.Conflict(w, r, "alert is already resolved")
		default:
			response.InternalError(w, r, "failed to resolve alert")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAlertResponse(resolved))
}
