package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwber/warden/geospoof"
	"github.com/fwber/warden/moderation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	srv, err := NewServer(Config{
		ModerationProviders: []string{"wordlist"},
	})
	require.NoError(t, err)
	return srv
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestModerationEvaluateEndpoint(t *testing.T) {
	assert := assert.New(t)
	srv := testServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/moderation/evaluate", `{"text":"just saying hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var decision moderation.ModerationDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.False(decision.Flagged)
	assert.Equal(moderation.ActionApprove, decision.Action)
	assert.Equal([]string{"wordlist"}, decision.Providers)

	// GTUBE-bearing text is rejected
	body, err := json.Marshal(map[string]string{
		"text": "hello XJS*C4JDBQADN1.NSBN3*2IDNEN*GTUBE-STANDARD-ANTI-UBE-TEST-EMAIL*C.34X",
	})
	require.NoError(t, err)
	rec = doJSON(srv, http.MethodPost, "/api/moderation/evaluate", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.True(decision.Flagged)
	assert.Equal(moderation.ActionReject, decision.Action)

	// missing text
	rec = doJSON(srv, http.MethodPost, "/api/moderation/evaluate", `{}`)
	assert.Equal(http.StatusBadRequest, rec.Code)
}

func TestGeoSpoofEvaluateEndpoint(t *testing.T) {
	assert := assert.New(t)
	srv := testServer(t)

	now := time.Now().UTC()
	body := fmt.Sprintf(`{
		"userId": "u1",
		"newFix": {"latitude": 40.7128, "longitude": -74.0060, "source": "gps", "observedAt": %q},
		"prevFix": {"latitude": 37.7749, "longitude": -122.4194, "source": "gps", "observedAt": %q}
	}`, now.Format(time.RFC3339), now.Add(-10*time.Minute).Format(time.RFC3339))

	rec := doJSON(srv, http.MethodPost, "/api/geospoof/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var finding geospoof.GeoSpoofFinding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &finding))
	assert.True(finding.HasFlag(geospoof.FlagHighVelocity))
	assert.Greater(finding.SuspicionScore, 0)

	// missing userId
	rec = doJSON(srv, http.MethodPost, "/api/geospoof/evaluate", `{"newFix":{"latitude":1,"longitude":1}}`)
	assert.Equal(http.StatusBadRequest, rec.Code)

	// out-of-range coordinates
	rec = doJSON(srv, http.MethodPost, "/api/geospoof/evaluate", `{"userId":"u1","newFix":{"latitude":123,"longitude":0}}`)
	assert.Equal(http.StatusBadRequest, rec.Code)
}
