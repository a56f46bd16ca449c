// Package device provides the push endpoint registry: which tokens belong to
// which user, and which transport family delivers to each token.
package device

import (
	"errors"
	"regexp"
	"time"
)

// Registry errors.
var (
	ErrEndpointNotFound = errors.New("device endpoint not found")
)

// Platform is the self-reported OS of the registering device.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformUnknown Platform = "unknown"
)

// NormalizePlatform maps arbitrary client input onto a known platform.
func NormalizePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformIOS:
		return PlatformIOS
	case PlatformAndroid:
		return PlatformAndroid
	default:
		return PlatformUnknown
	}
}

// TransportFamily identifies which push provider delivers to a token.
type TransportFamily string

const (
	// FamilyExpo tokens go through the Expo push service in batches.
	FamilyExpo TransportFamily = "expo"

	// FamilyFCM tokens go through FCM HTTP v1, one message per token.
	FamilyFCM TransportFamily = "fcm"
)

// expoTokenPattern matches the bracketed Expo token shape, e.g.
// "ExponentPushToken[xxxxxxxx]". Anything else is treated as a raw FCM
// registration token.
var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[^\]]+\]$`)

// Classify derives the transport family from the token's lexical shape.
// It is total: every token maps to exactly one family.
func Classify(token string) TransportFamily {
	if expoTokenPattern.MatchString(token) {
		return FamilyExpo
	}
	return FamilyFCM
}

// Endpoint is a registered push delivery endpoint. The token is globally
// unique; re-registration under a different user reassigns ownership.
type Endpoint struct {
	Token     string
	UserID    string
	DeviceID  *string
	Platform  Platform
	Family    TransportFamily
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenLast4 returns the last 4 characters of a token for logging.
func TokenLast4(token string) string {
	if len(token) < 4 {
		return token
	}
	return token[len(token)-4:]
}

// TokenLast4 returns the last 4 characters of the endpoint token.
func (e *Endpoint) TokenLast4() string {
	return TokenLast4(e.Token)
}
