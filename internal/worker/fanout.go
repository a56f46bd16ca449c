// Package worker provides background job processing for PawTrail.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/events"
	"github.com/pawtrail/pawtrail/internal/geo"
)

// AlertSource loads alerts for fan-out. Satisfied by alert.Service.
type AlertSource interface {
	Get(ctx context.Context, id string) (*alert.Alert, error)
}

// FanoutJob replays an alert through the fan-out pipeline. Deployments
// that move fan-out off the API process publish alert_fanout jobs; the
// worker resolves the alert and hands it to the same subscriber the
// in-process bus would have called.
type FanoutJob struct {
	alerts  AlertSource
	handler events.Handler
	timeout time.Duration
	logger  zerolog.Logger

	metrics *FanoutMetrics
}

// FanoutMetrics tracks fan-out job statistics.
type FanoutMetrics struct {
	mu sync.RWMutex

	Dispatched int64
	Skipped    int64
	Failed     int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// FanoutJobConfig holds configuration for creating a FanoutJob.
type FanoutJobConfig struct {
	Alerts  AlertSource
	Handler events.Handler
	Logger  zerolog.Logger

	// Timeout bounds a single fan-out run. Default: 60 seconds.
	Timeout time.Duration
}

// NewFanoutJob creates a new fan-out job processor.
func NewFanoutJob(cfg FanoutJobConfig) *FanoutJob {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &FanoutJob{
		alerts:  cfg.Alerts,
		handler: cfg.Handler,
		timeout: timeout,
		logger:  cfg.Logger,
		metrics: &FanoutMetrics{},
	}
}

// Run fans out one alert. A resolved alert is skipped without error so a
// stale or redelivered job does not push for a report that already closed.
func (j *FanoutJob) Run(ctx context.Context, alertID string) error {
	startTime := time.Now()

	a, err := j.alerts.Get(ctx, alertID)
	if err != nil {
		j.recordRun(startTime, runFailed)
		if errors.Is(err, alert.ErrAlertNotFound) {
			return fmt.Errorf("alert %s not found: %w", alertID, err)
		}
		return fmt.Errorf("loading alert %s: %w", alertID, err)
	}

	if a.Status != alert.StatusActive {
		j.logger.Info().
			Str("alert_id", a.ID).
			Str("status", string(a.Status)).
			Msg("alert no longer active, skipping fan-out")
		j.recordRun(startTime, runSkipped)
		return nil
	}

	var origin *geo.Coord
	if loc, ok := a.Location(); ok {
		origin = &loc
	}

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	j.handler(runCtx, events.AlertCreated{
		AlertID:    a.ID,
		AlertType:  string(a.Kind),
		Species:    a.Species,
		PetName:    a.PetName,
		ReporterID: a.ReporterID,
		PhotoURL:   a.PhotoURL,
		Origin:     origin,
		RadiusKm:   a.RadiusKm,
	})

	j.recordRun(startTime, runDispatched)

	j.logger.Info().
		Str("alert_id", a.ID).
		Dur("duration", time.Since(startTime)).
		Msg("fan-out job completed")

	return nil
}

type runOutcome int

const (
	runDispatched runOutcome = iota
	runSkipped
	runFailed
)

func (j *FanoutJob) recordRun(startTime time.Time, outcome runOutcome) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	switch outcome {
	case runDispatched:
		j.metrics.Dispatched++
	case runSkipped:
		j.metrics.Skipped++
	case runFailed:
		j.metrics.Failed++
	}
	j.metrics.LastRunAt = startTime
	j.metrics.LastRunDuration = time.Since(startTime)
}

// Metrics returns a snapshot of the job's counters.
func (j *FanoutJob) Metrics() FanoutMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return FanoutMetrics{
		Dispatched:      j.metrics.Dispatched,
		Skipped:         j.metrics.Skipped,
		Failed:          j.metrics.Failed,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
}
