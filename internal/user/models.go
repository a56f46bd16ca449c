// Package user provides user profiles for alert targeting and the follow
// graph.
//
// A profile optionally carries home coordinates. Users without coordinates
// are unreachable by radius targeting but remain reachable by direct
// targeting (chat, claims, follows).
package user

import (
	"errors"
	"time"

	"github.com/pawtrail/pawtrail/internal/geo"
)

// Repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

// User represents a user profile.
type User struct {
	// ID is the unique user identifier (format: usr_XXXX).
	ID string

	// DisplayName is shown in notifications ("Ana started following you").
	DisplayName string

	// Lat/Lon are the user's home coordinates, when shared.
	Lat *float64
	Lon *float64

	// CreatedAt is when the user was created.
	CreatedAt time.Time

	// UpdatedAt is when the user was last updated.
	UpdatedAt time.Time
}

// Location returns the user's coordinates and whether they exist.
// Implements geo.Locatable.
func (u *User) Location() (geo.Coord, bool) {
	if u.Lat == nil || u.Lon == nil {
		return geo.Coord{}, false
	}
	return geo.Coord{Lat: *u.Lat, Lon: *u.Lon}, true
}
