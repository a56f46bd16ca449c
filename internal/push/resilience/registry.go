package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// TransportHealth is a point-in-time health view of one push transport.
type TransportHealth struct {
	// Name is the transport identifier ("expo", "fcm").
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful call.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed call.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true while the transport's circuit is closed.
func (h *TransportHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks the push transports and their observed health. The ops
// status endpoint reads it; the transport clients report into it.
type Registry struct {
	mu         sync.RWMutex
	transports map[string]*registeredTransport
}

type registeredTransport struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new transport registry.
func NewRegistry() *Registry {
	return &Registry{
		transports: make(map[string]*registeredTransport),
	}
}

// Register adds a transport client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports[name] = &registeredTransport{client: client}
}

// RecordSuccess notes a successful call for the named transport.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transports[name]; ok {
		now := time.Now()
		t.lastSuccessAt = &now
	}
}

// RecordFailure notes a failed call for the named transport.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transports[name]; ok {
		now := time.Now()
		t.lastFailureAt = &now
		if err != nil {
			t.lastError = err.Error()
		}
	}
}

// Health returns health snapshots for all registered transports.
func (r *Registry) Health() []TransportHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	healths := make([]TransportHealth, 0, len(r.transports))
	for name, t := range r.transports {
		healths = append(healths, TransportHealth{
			Name:          name,
			CircuitState:  t.client.CircuitBreakerState(),
			Counts:        t.client.CircuitBreakerCounts(),
			LastSuccessAt: t.lastSuccessAt,
			LastFailureAt: t.lastFailureAt,
			LastError:     t.lastError,
		})
	}
	return healths
}
