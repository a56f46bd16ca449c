// Package fcm implements the FCM HTTP v1 push transport (family "fcm").
// Unlike Expo, FCM v1 takes exactly one token per call: platform shaping
// (Android channel/icon/color, APNs headers for message grouping) is
// embedded per message, so fan-out issues one request per endpoint.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pawtrail/pawtrail/internal/push"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
)

const (
	// TransportName identifies this transport.
	TransportName = "fcm"

	// DefaultBaseURL is the FCM HTTP v1 API base URL.
	DefaultBaseURL = "https://fcm.googleapis.com"

	// messagingScope is the OAuth2 scope for the send endpoint.
	messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

	// MaxChunkSize is the practical ceiling for one logical fan-out chunk.
	// Each endpoint is still a separate call; the chunk bound exists only
	// to keep per-chunk latency predictable.
	MaxChunkSize = 500
)

// ErrCredentials is returned when the OAuth2 bearer token cannot be
// obtained. The whole FCM side of a fan-out aborts on it; Expo delivery is
// unaffected.
var ErrCredentials = errors.New("fcm credential exchange failed")

// ClientConfig holds configuration for the FCM client.
type ClientConfig struct {
	// ProjectID is the Firebase project ID (required).
	ProjectID string

	// CredentialsJSON is the service-account key used for the OAuth2
	// client-credentials exchange. Required unless TokenSource is set.
	CredentialsJSON []byte

	// TokenSource overrides credential exchange (used in tests).
	TokenSource oauth2.TokenSource

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an FCM HTTP v1 API client.
type Client struct {
	projectID  string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger

	credentialsJSON []byte

	// tokenSource is built lazily on first send and cached for the life
	// of the process. oauth2 reuses the token until expiry and refreshes
	// it on demand; concurrent readers are safe, and a refresh never
	// re-signs calls already in flight with the prior token.
	tokenOnce   sync.Once
	tokenSource oauth2.TokenSource
	tokenErr    error
}

// NewClient creates a new FCM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(TransportName))
	}

	return &Client{
		projectID:       cfg.ProjectID,
		baseURL:         baseURL,
		httpClient:      httpClient,
		logger:          cfg.Logger,
		credentialsJSON: cfg.CredentialsJSON,
		tokenSource:     cfg.TokenSource,
	}
}

// Name returns the transport name.
func (c *Client) Name() string {
	return TransportName
}

// bearerToken returns a valid access token, performing the service-account
// exchange on first use. The token source is bound to the process, not the
// request: a fan-out's context cancelling must not invalidate the cached
// credential for later sends.
func (c *Client) bearerToken() (string, error) {
	c.tokenOnce.Do(func() {
		if c.tokenSource != nil {
			return
		}
		jwtConfig, err := google.JWTConfigFromJSON(c.credentialsJSON, messagingScope)
		if err != nil {
			c.tokenErr = err
			return
		}
		c.tokenSource = jwtConfig.TokenSource(context.Background())
	})

	if c.tokenErr != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentials, c.tokenErr)
	}

	token, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	return token.AccessToken, nil
}

// FCM HTTP v1 request structures.

type sendRequest struct {
	Message message `json:"message"`
}

type message struct {
	Token        string            `json:"token"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *androidConfig    `json:"android,omitempty"`
	APNs         *apnsConfig       `json:"apns,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

type androidConfig struct {
	Priority     string              `json:"priority,omitempty"`
	CollapseKey  string              `json:"collapse_key,omitempty"`
	Notification androidNotification `json:"notification"`
}

type androidNotification struct {
	ChannelID string `json:"channel_id,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	Sound     string `json:"sound,omitempty"`
	Image     string `json:"image,omitempty"`
}

type apnsConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
	Payload apnsPayload       `json:"payload"`
}

type apnsPayload struct {
	APS aps `json:"aps"`
}

type aps struct {
	Sound    string `json:"sound,omitempty"`
	ThreadID string `json:"thread-id,omitempty"`
	Badge    *int   `json:"badge,omitempty"`
}

// errorResponse is the FCM v1 error body. The UNREGISTERED signal lives in
// error.details; the failing token is recovered from our own request, not
// from the response.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// buildMessage shapes the transport-neutral payload into an FCM v1 message.
// Title and body are sent in both notification and data on purpose: the
// data copy is what backgrounded client versions render.
func (c *Client) buildMessage(token string, payload push.Payload) message {
	sound := payload.Sound
	if sound == "" {
		sound = "default"
	}

	image := ""
	if payload.ImageURL != nil {
		image = *payload.ImageURL
	}

	apnsHeaders := map[string]string{
		"apns-priority": "10",
	}
	if payload.ThreadID != "" {
		apnsHeaders["apns-collapse-id"] = payload.ThreadID
	}

	return message{
		Token: token,
		Notification: notification{
			Title: payload.Title,
			Body:  payload.Body,
			Image: image,
		},
		Data: payload.StringData(),
		Android: &androidConfig{
			Priority:    "high",
			CollapseKey: payload.ThreadID,
			Notification: androidNotification{
				ChannelID: payload.ChannelID,
				Icon:      "notification_icon",
				Color:     "#F97316",
				Sound:     sound,
				Image:     image,
			},
		},
		APNs: &apnsConfig{
			Headers: apnsHeaders,
			Payload: apnsPayload{
				APS: aps{
					Sound:    sound,
					ThreadID: payload.ThreadID,
					Badge:    payload.Badge,
				},
			},
		},
	}
}

// Send delivers the payload to a single token. Delivery failures are
// reported in the result; a non-nil error is returned only when the bearer
// token could not be obtained (ErrCredentials), which aborts the caller's
// remaining FCM sends for this fan-out.
func (c *Client) Send(ctx context.Context, token string, payload push.Payload) (push.DeliveryResult, error) {
	result := push.DeliveryResult{Token: token}

	accessToken, err := c.bearerToken()
	if err != nil {
		return result, err
	}

	body, err := json.Marshal(sendRequest{Message: c.buildMessage(token, payload)})
	if err != nil {
		result.Raw = err.Error()
		return result, nil
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.baseURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		result.Raw = err.Error()
		return result, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Raw = err.Error()
		return result, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		result.OK = true
		return result, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	result.Raw = string(respBody)
	result.PermanentFailure = isUnregistered(resp.StatusCode, respBody)
	if result.Raw == "" {
		result.Raw = "status " + strconv.Itoa(resp.StatusCode)
	}

	return result, nil
}

// isUnregistered reports whether the provider confirmed the token is gone
// for good: HTTP 404 or an UNREGISTERED error code in error.details.
func isUnregistered(statusCode int, body []byte) bool {
	if statusCode == http.StatusNotFound {
		return true
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return false
	}

	for _, d := range errResp.Error.Details {
		if d.ErrorCode == "UNREGISTERED" {
			return true
		}
	}
	return false
}
