package alert

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/pawtrail/internal/events"
	"github.com/pawtrail/pawtrail/internal/geo"
)

// Service errors.
var (
	ErrInvalidKind   = errors.New("alert kind must be lost or found")
	ErrAlreadyClosed = errors.New("alert is already resolved")
	ErrNotReporter   = errors.New("only the reporter can resolve an alert")
)

// Publisher publishes domain events. Satisfied by events.Bus.
type Publisher interface {
	Publish(event events.Event)
}

// Service provides alert operations.
type Service struct {
	repo Repository
	bus  Publisher
}

// NewService creates a new alert service.
func NewService(repo Repository, bus Publisher) *Service {
	return &Service{repo: repo, bus: bus}
}

// Get retrieves an alert by ID.
func (s *Service) Get(ctx context.Context, id string) (*Alert, error) {
	return s.repo.Get(ctx, id)
}

// Create files a lost or found report and announces it. The announcement
// carries no coordinates when the report has none, which downstream
// matching treats as "no radius targeting".
func (s *Service) Create(ctx context.Context, params CreateParams) (*Alert, error) {
	if params.Kind != KindLost && params.Kind != KindFound {
		return nil, ErrInvalidKind
	}

	radius := params.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	now := time.Now()
	a := &Alert{
		ID:          "alr_" + uuid.New().String()[:22],
		Kind:        params.Kind,
		Species:     params.Species,
		PetName:     params.PetName,
		Description: params.Description,
		Lat:         params.Lat,
		Lon:         params.Lon,
		RadiusKm:    radius,
		PhotoURL:    params.PhotoURL,
		ReporterID:  params.ReporterID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if s.bus != nil {
		var origin *geo.Coord
		if loc, ok := a.Location(); ok {
			origin = &loc
		}
		s.bus.Publish(events.AlertCreated{
			AlertID:    a.ID,
			AlertType:  string(a.Kind),
			Species:    a.Species,
			PetName:    a.PetName,
			ReporterID: a.ReporterID,
			PhotoURL:   a.PhotoURL,
			Origin:     origin,
			RadiusKm:   a.RadiusKm,
		})
	}

	return a, nil
}

// ListNearby returns active alerts for display around a point. Alerts
// without coordinates are included: a sighting filed without a location
// is still worth showing, it just cannot be distance-ranked. This is
// deliberately looser than recipient matching, which drops
// coordinate-less users.
func (s *Service) ListNearby(ctx context.Context, origin geo.Coord, radiusKm float64) ([]*Alert, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	nearby := geo.FilterWithinRadius(origin, active, radiusKm)
	geo.SortByDistance(origin, nearby)

	for _, a := range active {
		if _, ok := a.Location(); !ok {
			nearby = append(nearby, a)
		}
	}

	return nearby, nil
}

// Resolve closes an alert. Only the reporter can resolve their report;
// resolving twice is an error so clients can surface the conflict.
func (s *Service) Resolve(ctx context.Context, id, userID string) (*Alert, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ReporterID != userID {
		return nil, ErrNotReporter
	}
	if a.Status == StatusResolved {
		return nil, ErrAlreadyClosed
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusResolved); err != nil {
		return nil, err
	}

	a.Status = StatusResolved
	return a, nil
}
