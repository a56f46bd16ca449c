package fcm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/pawtrail/pawtrail/internal/push"
	"github.com/pawtrail/pawtrail/internal/push/fcm"
)

func staticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-bearer"})
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("key rejected")
}

func testPayload() push.Payload {
	img := "https://cdn.pawtrail.app/pets/thor.jpg"
	return push.Payload{
		Title:     "Lost dog near you",
		Body:      "Thor was last seen at Ibirapuera Park",
		Data:      map[string]any{"alertId": "alr_1", "lat": -23.5505},
		ImageURL:  &img,
		ChannelID: "alerts",
		ThreadID:  "alr_1",
	}
}

func newTestClient(url string, ts oauth2.TokenSource) *fcm.Client {
	return fcm.NewClient(fcm.ClientConfig{
		ProjectID:   "pawtrail-test",
		BaseURL:     url,
		TokenSource: ts,
		Logger:      zerolog.Nop(),
	})
}

func TestClient_Send(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/pawtrail-test/messages:send", r.URL.Path)
		assert.Equal(t, "Bearer test-bearer", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"projects/pawtrail-test/messages/msg1"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, staticTokenSource())

	result, err := client.Send(context.Background(), "fcm-token-1", testPayload())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "fcm-token-1", result.Token)

	msg, ok := captured["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fcm-token-1", msg["token"])

	// All data values are strings, with title/body duplicated in.
	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "-23.5505", data["lat"])
	assert.Equal(t, "Lost dog near you", data["title"])

	notif, ok := msg["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Lost dog near you", notif["title"])

	android, ok := msg["android"].(map[string]any)
	require.True(t, ok)
	androidNotif := android["notification"].(map[string]any)
	assert.Equal(t, "alerts", androidNotif["channel_id"])

	apns, ok := msg["apns"].(map[string]any)
	require.True(t, ok)
	headers := apns["headers"].(map[string]any)
	assert.Equal(t, "alr_1", headers["apns-collapse-id"])
	aps := apns["payload"].(map[string]any)["aps"].(map[string]any)
	assert.Equal(t, "alr_1", aps["thread-id"])
}

func TestClient_Send_UnregisteredTokenIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"status":"NOT_FOUND","details":[
			{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}
		]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, staticTokenSource())

	result, err := client.Send(context.Background(), "dead-token", testPayload())
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.True(t, result.PermanentFailure)
	assert.Equal(t, "dead-token", result.Token, "failing token comes from the request, not the response")
}

func TestClient_Send_BadRequestIsNotPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, staticTokenSource())

	result, err := client.Send(context.Background(), "token-1", testPayload())
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.False(t, result.PermanentFailure)
}

func TestClient_Send_CredentialFailureReturnsError(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", failingTokenSource{})

	_, err := client.Send(context.Background(), "token-1", testPayload())
	assert.ErrorIs(t, err, fcm.ErrCredentials)
}
