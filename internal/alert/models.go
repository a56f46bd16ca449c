// Package alert provides lost and found pet reports. Creating a report
// announces it on the event bus; nearby-user matching and push delivery
// happen downstream, never inside the creating request.
package alert

import (
	"errors"
	"time"

	"github.com/pawtrail/pawtrail/internal/geo"
)

// Repository errors.
var (
	ErrAlertNotFound = errors.New("alert not found")
)

// Kind is the report direction.
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Status is the report lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// DefaultRadiusKm is the targeting radius applied when a report does not
// specify one.
const DefaultRadiusKm = 10.0

// Alert is a lost or found pet report.
type Alert struct {
	// ID is the unique alert identifier (format: alr_XXXX).
	ID string

	// Kind is "lost" or "found".
	Kind Kind

	// Species is the reported animal species ("dog", "cat", ...).
	Species string

	// PetName is the pet's name, when known. Found reports may leave it
	// empty.
	PetName string

	// Description is the free-text report body.
	Description string

	// Lat/Lon are the sighting or loss coordinates. A report without
	// them still appears in listings but triggers no radius targeting.
	Lat *float64
	Lon *float64

	// RadiusKm is the targeting radius around the coordinates.
	RadiusKm float64

	// PhotoURL is an optional pet photo attached to pushes.
	PhotoURL *string

	// ReporterID is the user who filed the report.
	ReporterID string

	// Status is "active" or "resolved".
	Status Status

	// CreatedAt is when the report was filed.
	CreatedAt time.Time

	// UpdatedAt is when the report was last updated.
	UpdatedAt time.Time
}

// Location returns the report coordinates and whether they exist.
// Implements geo.Locatable.
func (a *Alert) Location() (geo.Coord, bool) {
	if a.Lat == nil || a.Lon == nil {
		return geo.Coord{}, false
	}
	return geo.Coord{Lat: *a.Lat, Lon: *a.Lon}, true
}

// CreateParams holds the fields for filing a report.
type CreateParams struct {
	Kind        Kind
	Species     string
	PetName     string
	Description string
	Lat         *float64
	Lon         *float64
	RadiusKm    float64
	PhotoURL    *string
	ReporterID  string
}
