// Package expo implements the Expo push transport (family "expo").
// Messages are batched: up to 100 recipients per HTTP call, with per-index
// ticket inspection to attribute failures back to individual tokens.
package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/push"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
)

const (
	// TransportName identifies this transport.
	TransportName = "expo"

	// DefaultSendURL is the Expo push send endpoint.
	DefaultSendURL = "https://exp.host/--/api/v2/push/send"

	// MaxBatchSize is the maximum number of recipients per send call.
	// Larger recipient sets must be split by the caller.
	MaxBatchSize = 100
)

// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
var ErrBatchTooLarge = fmt.Errorf("expo batch exceeds %d recipients", MaxBatchSize)

// ClientConfig holds configuration for the Expo client.
type ClientConfig struct {
	// SendURL is the push endpoint (optional, defaults to DefaultSendURL).
	SendURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Expo push API client.
type Client struct {
	sendURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Expo push client.
func NewClient(cfg ClientConfig) *Client {
	sendURL := cfg.SendURL
	if sendURL == "" {
		sendURL = DefaultSendURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(TransportName))
	}

	return &Client{
		sendURL:    sendURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the transport name.
func (c *Client) Name() string {
	return TransportName
}

// sendRequest is the Expo push send request body.
type sendRequest struct {
	To        []string          `json:"to"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Sound     string            `json:"sound,omitempty"`
	Badge     *int              `json:"badge,omitempty"`
	Priority  string            `json:"priority,omitempty"`
	ChannelID string            `json:"channelId,omitempty"`
}

// ticket is one per-recipient entry in the Expo response, in request order.
type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type sendResponse struct {
	Data []ticket `json:"data"`
}

// SendBatch delivers one payload to up to MaxBatchSize tokens in a single
// provider call. The response is walked per index: ticket i belongs to
// tokens[i], which is how a "DeviceNotRegistered" failure is attributed to
// the right token for pruning.
//
// A returned error means the whole call failed (network, circuit open,
// provider 5xx); every token in the batch then counts as a transient
// failure with no per-token results.
func (c *Client) SendBatch(ctx context.Context, tokens []string, payload push.Payload) ([]push.DeliveryResult, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	sound := payload.Sound
	if sound == "" {
		sound = "default"
	}

	body, err := json.Marshal(sendRequest{
		To:        tokens,
		Title:     payload.Title,
		Body:      payload.Body,
		Data:      payload.StringData(),
		Sound:     sound,
		Badge:     payload.Badge,
		Priority:  "high",
		ChannelID: payload.ChannelID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var expoResp sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&expoResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toResults(tokens, expoResp.Data), nil
}

// toResults pairs tickets with tokens by index. A short ticket list leaves
// the unmatched tail as transient failures rather than guessing.
func (c *Client) toResults(tokens []string, tickets []ticket) []push.DeliveryResult {
	results := make([]push.DeliveryResult, 0, len(tokens))

	for i, token := range tokens {
		if i >= len(tickets) {
			results = append(results, push.DeliveryResult{
				Token: token,
				Raw:   "missing ticket in provider response",
			})
			continue
		}

		t := tickets[i]
		if t.Status == "ok" {
			results = append(results, push.DeliveryResult{
				Token: token,
				OK:    true,
				Raw:   t.ID,
			})
			continue
		}

		results = append(results, push.DeliveryResult{
			Token:            token,
			PermanentFailure: t.Details.Error == "DeviceNotRegistered",
			Raw:              t.Message,
		})
	}

	return results
}
