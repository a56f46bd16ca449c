package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/api"
	"github.com/pawtrail/pawtrail/internal/api/models"
	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/claim"
	"github.com/pawtrail/pawtrail/internal/device"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/user"
)

// testAuthService creates an auth service for testing.
func testAuthService() *auth.Service {
	return auth.NewService(auth.Config{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.pawtrail.test",
		Audience:   "pawtrail-api",
	})
}

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)

	alertService := alert.NewService(alert.NewInMemoryRepository(), nil)
	claimService := claim.NewService(claim.NewInMemoryRepository(), alertService, nil)

	return api.NewRouter(api.RouterConfig{
		Version:           "test",
		BuildTime:         "2026-01-01T00:00:00Z",
		Logger:            logger,
		AuthService:       testAuthService(),
		DeviceRegistry:    device.NewRegistry(device.NewInMemoryRepository()),
		NotificationStore: notification.NewStore(notification.NewInMemoryRepository()),
		AlertService:      alertService,
		ClaimService:      claimService,
		UserService:       user.NewService(user.NewInMemoryRepository(), nil),
	})
}

// addAuthHeader adds a valid Bearer token for the given user.
func addAuthHeader(t *testing.T, req *http.Request, userID string) {
	t.Helper()
	token, _, err := testAuthService().GenerateAccessToken(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.HealthResponse
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestRouter_ReadinessCheck_NoDatabaseConfigured(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ready models.ReadyResponse
	err := json.Unmarshal(w.Body.Bytes(), &ready)
	require.NoError(t, err)

	assert.Equal(t, "ready", ready.Status)
}

func TestRouter_SystemStatus_RequiresAuth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	addAuthHeader(t, req, "usr_ops")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatusResponse
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, "ok", status.Status)
}

func TestRouter_RegisterDevice(t *testing.T) {
	router := newTestRouter()

	input := models.RegisterDeviceRequest{
		Token:    "ExponentPushToken[test-router-token]",
		Platform: "ios",
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/me/devices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, "usr_device_owner")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.DeviceResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "ExponentPushToken[test-router-token]", resp.Token)
	assert.Equal(t, "expo", resp.Family)
}

func TestRouter_RegisterDevice_ValidationError(t *testing.T) {
	router := newTestRouter()

	body := []byte(`{"platform":"ios"}`) // missing token

	req := httptest.NewRequest(http.MethodPost, "/v1/me/devices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, "usr_device_owner")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_DeviceLifecycle(t *testing.T) {
	router := newTestRouter()
	const userID = "usr_lifecycle"

	register := func(token string) {
		body, _ := json.Marshal(models.RegisterDeviceRequest{Token: token})
		req := httptest.NewRequest(http.MethodPost, "/v1/me/devices", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		addAuthHeader(t, req, userID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	register("ExponentPushToken[one]")
	register("fcm-bare-token-two")

	// List both endpoints
	req := httptest.NewRequest(http.MethodGet, "/v1/me/devices", http.NoBody)
	addAuthHeader(t, req, userID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var list models.DeviceListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Items, 2)

	// Unregister one; idempotent on repeat
	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodDelete, "/v1/me/devices/ExponentPushToken[one]", http.NoBody)
		addAuthHeader(t, req, userID)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/me/devices", http.NoBody)
	addAuthHeader(t, req, userID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}

func TestRouter_ListNotifications_Empty(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me/notifications", http.NoBody)
	addAuthHeader(t, req, "usr_feed")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var feed models.NotificationListResponse
	err := json.Unmarshal(w.Body.Bytes(), &feed)
	require.NoError(t, err)

	assert.Empty(t, feed.Items)
	assert.Equal(t, 0, feed.Total)
}

func TestRouter_AlertLifecycle(t *testing.T) {
	router := newTestRouter()
	const reporterID = "usr_reporter"

	// File a report
	input := models.CreateAlertRequest{
		Kind:     "lost",
		Species:  "dog",
		PetName:  "Rex",
		Lat:      floatPtr(52.3676),
		Lon:      floatPtr(4.9041),
		RadiusKm: 5,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, reporterID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var created models.AlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "lost", created.Kind)
	assert.Equal(t, "active", created.Status)

	// Fetch it back
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts/"+created.ID, http.NoBody)
	addAuthHeader(t, req, reporterID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Visible in the public nearby listing
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts/nearby?lat=52.37&lon=4.90&radiusKm=10", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var listing models.AlertListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, created.ID, listing.Items[0].ID)

	// Someone else cannot resolve it
	req = httptest.NewRequest(http.MethodPost, "/v1/alerts/"+created.ID+"/resolve", http.NoBody)
	addAuthHeader(t, req, "usr_stranger")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The reporter can, once
	req = httptest.NewRequest(http.MethodPost, "/v1/alerts/"+created.ID+"/resolve", http.NoBody)
	addAuthHeader(t, req, reporterID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/alerts/"+created.ID+"/resolve", http.NoBody)
	addAuthHeader(t, req, reporterID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_CreateAlert_ValidationError(t *testing.T) {
	router := newTestRouter()

	body := []byte(`{"kind":"stolen","species":"dog"}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, "usr_reporter")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "kind", problem.Errors[0].Field)
}

func TestRouter_ClaimFlow(t *testing.T) {
	router := newTestRouter()
	const reporterID = "usr_owner"
	const claimantID = "usr_finder"

	// Reporter files a report
	body, _ := json.Marshal(models.CreateAlertRequest{Kind: "found", Species: "cat"})
	req := httptest.NewRequest(http.MethodPost, "/v1/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, reporterID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.AlertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Claimant claims it
	body, _ = json.Marshal(models.CreateClaimRequest{Message: "That's my cat Whiskers"})
	req = httptest.NewRequest(http.MethodPost, "/v1/alerts/"+created.ID+"/claims", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(t, req, claimantID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var createdClaim models.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createdClaim))
	assert.Equal(t, "pending", createdClaim.Status)

	// Reporter lists claims
	req = httptest.NewRequest(http.MethodGet, "/v1/alerts/"+created.ID+"/claims", http.NoBody)
	addAuthHeader(t, req, reporterID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var claims models.ClaimListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	require.Len(t, claims.Items, 1)

	// Claimant cannot decide their own claim
	req = httptest.NewRequest(http.MethodPost, "/v1/claims/"+createdClaim.ID+"/accept", http.NoBody)
	addAuthHeader(t, req, claimantID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reporter accepts
	req = httptest.NewRequest(http.MethodPost, "/v1/claims/"+createdClaim.ID+"/accept", http.NoBody)
	addAuthHeader(t, req, reporterID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var decided models.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decided))
	assert.Equal(t, "accepted", decided.Status)
}

func TestRouter_Unauthorized(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me/devices", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func floatPtr(v float64) *float64 {
	return &v
}
