package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/api/response"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
)

// Pinger checks a dependency's connectivity. Satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	db         Pinger
	transports *resilience.Registry
}

// NewOpsHandler creates a new ops handler. db and transports may be nil
// when the corresponding check is not configured.
func NewOpsHandler(version, buildTime string, db Pinger, transports *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:    version,
		buildTime:  buildTime,
		db:         db,
		transports: transports,
	}
}

// HealthCheck handles GET /v1/ops/health (liveness).
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Not ready until the database
// answers a ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	if !ready {
		response.JSON(w, r, http.StatusServiceUnavailable, models.ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}

	response.JSON(w, r, http.StatusOK, models.ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// SystemStatus handles GET /v1/ops/status (authenticated). Reports push
// transport circuit health for operators.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	var transports []models.TransportStatusResponse
	status := "ok"

	if h.transports != nil {
		for _, th := range h.transports.Health() {
			if !th.IsHealthy() {
				status = "degraded"
			}
			transports = append(transports, models.TransportStatusResponse{
				Name:          th.Name,
				Healthy:       th.IsHealthy(),
				CircuitState:  th.CircuitState.String(),
				LastSuccessAt: th.LastSuccessAt,
				LastFailureAt: th.LastFailureAt,
				LastError:     th.LastError,
			})
		}
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatusResponse{
		Status:     status,
		Version:    h.version,
		Transports: transports,
	})
}
