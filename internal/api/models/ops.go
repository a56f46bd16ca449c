package models

import "time"

// HealthResponse is the liveness check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// TransportStatusResponse is the health view of one push transport.
type TransportStatusResponse struct {
	Name          string     `json:"name"`
	Healthy       bool       `json:"healthy"`
	CircuitState  string     `json:"circuitState"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// SystemStatusResponse is the authenticated ops status view.
type SystemStatusResponse struct {
	Status     string                    `json:"status"`
	Version    string                    `json:"version"`
	Transports []TransportStatusResponse `json:"transports"`
}
