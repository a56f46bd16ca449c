package claim

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/events"
)

// Service errors.
var (
	ErrOwnAlert     = errors.New("cannot claim your own alert")
	ErrAlertClosed  = errors.New("alert is no longer active")
	ErrNotDecidable = errors.New("claim is not pending")
	ErrNotOwner     = errors.New("only the alert reporter can decide a claim")
)

// Publisher publishes domain events. Satisfied by events.Bus.
type Publisher interface {
	Publish(event events.Event)
}

// AlertGetter looks up alerts. Satisfied by alert.Service.
type AlertGetter interface {
	Get(ctx context.Context, id string) (*alert.Alert, error)
}

// Service provides claim operations.
type Service struct {
	repo   Repository
	alerts AlertGetter
	bus    Publisher
}

// NewService creates a new claim service.
func NewService(repo Repository, alerts AlertGetter, bus Publisher) *Service {
	return &Service{repo: repo, alerts: alerts, bus: bus}
}

// Get retrieves a claim by ID.
func (s *Service) Get(ctx context.Context, id string) (*Claim, error) {
	return s.repo.Get(ctx, id)
}

// ListByAlert retrieves all claims on an alert.
func (s *Service) ListByAlert(ctx context.Context, alertID string) ([]*Claim, error) {
	return s.repo.ListByAlert(ctx, alertID)
}

// Create files a claim against an active alert and announces the pending
// claim so the reporter gets notified.
func (s *Service) Create(ctx context.Context, alertID, claimantID, message string) (*Claim, error) {
	a, err := s.alerts.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.Status != alert.StatusActive {
		return nil, ErrAlertClosed
	}
	if a.ReporterID == claimantID {
		return nil, ErrOwnAlert
	}

	now := time.Now()
	c := &Claim{
		ID:         "clm_" + uuid.New().String()[:22],
		AlertID:    alertID,
		ClaimantID: claimantID,
		Message:    message,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.announce(c, a)
	return c, nil
}

// Accept marks a pending claim accepted. Only the alert reporter decides.
func (s *Service) Accept(ctx context.Context, claimID, deciderID string) (*Claim, error) {
	return s.decide(ctx, claimID, deciderID, StatusAccepted)
}

// Reject marks a pending claim rejected. Only the alert reporter decides.
func (s *Service) Reject(ctx context.Context, claimID, deciderID string) (*Claim, error) {
	return s.decide(ctx, claimID, deciderID, StatusRejected)
}

func (s *Service) decide(ctx context.Context, claimID, deciderID string, status Status) (*Claim, error) {
	c, err := s.repo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusPending {
		return nil, ErrNotDecidable
	}

	a, err := s.alerts.Get(ctx, c.AlertID)
	if err != nil {
		return nil, err
	}
	if a.ReporterID != deciderID {
		return nil, ErrNotOwner
	}

	if err := s.repo.UpdateStatus(ctx, claimID, status); err != nil {
		return nil, err
	}

	c.Status = status
	s.announce(c, a)
	return c, nil
}

func (s *Service) announce(c *Claim, a *alert.Alert) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.ClaimStatusChanged{
		ClaimID:    c.ID,
		AlertID:    c.AlertID,
		Status:     string(c.Status),
		ClaimantID: c.ClaimantID,
		OwnerID:    a.ReporterID,
		PetName:    a.PetName,
	})
}
