package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigobj/beaconfence/pkg/fence"
	"github.com/sigobj/beaconfence/pkg/metrics"
)

type stubSource struct {
	fence      *fence.Fence
	inside     bool
	monitoring bool
}

func (s *stubSource) Fence() *fence.Fence { return s.fence }
func (s *stubSource) Inside() bool        { return s.inside }
func (s *stubSource) Monitoring() bool    { return s.monitoring }

func testID() fence.Identity {
	return fence.NewIdentity("BeaconRegion01", uuid.MustParse("EE7C8AFC-4DED-48D6-9E17-19CF106D89EF"), 501, 201)
}

func newTestRouter(t *testing.T, src StatusSource, reg *prometheus.Registry) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(New(src, reg, logger))
}

func getStatus(t *testing.T, router http.Handler) Status {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	return status
}

func TestStatusWithoutReading(t *testing.T) {
	src := &stubSource{fence: fence.New(testID()), monitoring: true}
	status := getStatus(t, newTestRouter(t, src, prometheus.NewRegistry()))

	assert.Equal(t, "ee7c8afc-4ded-48d6-9e17-19cf106d89ef", status.Region)
	assert.Equal(t, "BeaconRegion01", status.Name)
	assert.Equal(t, uint16(501), status.Major)
	assert.Equal(t, uint16(201), status.Minor)
	assert.True(t, status.Monitoring)
	assert.False(t, status.Inside)
	assert.Equal(t, "Location: Unknown", status.Location)
	assert.Equal(t, "Unknown", status.Proximity)
	assert.Equal(t, -1.0, status.Distance)
}

func TestStatusWithReading(t *testing.T) {
	f := fence.New(testID())
	require.True(t, f.RecordIfMatching(fence.ReadingFor(testID(), fence.ProximityNear, 3.456)))
	src := &stubSource{fence: f, inside: true, monitoring: true}

	status := getStatus(t, newTestRouter(t, src, prometheus.NewRegistry()))
	assert.True(t, status.Inside)
	assert.Equal(t, "Location: Near ~3.46m", status.Location)
	assert.Equal(t, "Near", status.Proximity)
	assert.InDelta(t, 3.456, status.Distance, 1e-9)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, &stubSource{fence: fence.New(testID())}, prometheus.NewRegistry())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RecordEnter()
	m.SetDistance(2.5)

	router := newTestRouter(t, &stubSource{fence: fence.New(testID())}, reg)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, "beaconfence_inside 1"), text)
	assert.True(t, strings.Contains(text, "beaconfence_distance_meters 2.5"), text)
	assert.True(t, strings.Contains(text, `beaconfence_region_transitions_total{transition="enter"} 1`), text)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, &stubSource{fence: fence.New(testID())}, prometheus.NewRegistry())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg).SetAdvertising(true)
	router := NewMetricsRouter(reg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "beaconfence_advertising 1")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
