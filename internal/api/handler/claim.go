package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/claim"
)

// ClaimHandler handles pet claims on alerts.
type ClaimHandler struct {
	claims *claim.Service
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(claims *claim.Service) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// CreateClaim handles POST /v1/alerts/{alertId}/claims.
func (h *ClaimHandler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	alertID := chi.URLParam(r, "alertId")

	var req models.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if fieldErrors := models.Validate(req); fieldErrors != nil {
		response.BadRequest(w, r, "validation failed", fieldErrors)
		return
	}

	created, err := h.claims.Create(r.Context(), alertID, userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, alert.ErrAlertNotFound):
			response.NotFound(w, r, "alert not found")
		case errors.Is(err, claim.ErrOwnAlert):
			response.Conflict(w, r, "cannot claim your own alert")
		case errors.Is(err, claim.ErrAlertClosed):
			response.Conflict(w, r, "alert is no longer active")
		default:
			response.InternalError(w, r, "failed to create claim")
		}
		return
	}

	response.Created(w, r, "/v1/claims/"+created.ID, models.NewClaimResponse(created))
}

// ListClaims handles GET /v1/alerts/{alertId}/claims.
func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims.ListByAlert(r.Context(), chi.URLParam(r, "alertId"))
	if err != nil {
		response.InternalError(w, r, "failed to list claims")
		return
	}

	items := make([]models.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		items = append(items, models.NewClaimResponse(c))
	}

	response.JSON(w, r, http.StatusOK, models.ClaimListResponse{Items: items})
}

// AcceptClaim handles POST /v1/claims/{claimId}/accept.
func (h *ClaimHandler) AcceptClaim(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.claims.Accept)
}

// RejectClaim handles POST /v1/claims/{claimId}/reject.
func (h *ClaimHandler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.claims.Reject)
}

func (h *ClaimHandler) decide(w http.ResponseWriter, r *http.Request, decision func(ctx context.Context, claimID, deciderID string) (*claim.Claim, error)) {
	userID := middleware.GetUserID(r.Context())
	claimID := chi.URLParam(r, "claimId")

	decided, err := decision(r.Context(), claimID, userID)
	if err != nil {
		switch {
		case errors.Is(err, claim.ErrClaimNotFound):
			response.NotFound(w, r, "claim not found")
		case errors.Is(err, claim.ErrNotOwner):
			response.Forbidden(w, r, "only the alert reporter can decide a claim")
		case errors.Is(err, claim.ErrNotDecidable):
			response.Conflict(w, r, "claim has already been decided")
		default:
			response.InternalError(w, r, "failed to update claim")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewClaimResponse(decided))
}
