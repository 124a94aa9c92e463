package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/pkg/config"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
)

type stubConnectivity struct {
	connected bool
}

func (s *stubConnectivity) Connected() bool { return s.connected }

func newTestServer(connected bool) *Server {
	cfg := &config.Config{}
	cfg.Health.Port = 0
	return New(cfg, &stubConnectivity{connected: connected}, metrics.New(), zap.NewNop())
}

func TestHealthEndpointOK(t *testing.T) {
	srv := newTestServer(true)

	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthEndpointDegraded(t *testing.T) {
	srv := newTestServer(false)

	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestReadyEndpoint(t *testing.T) {
	srv := newTestServer(true)

	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(true)

	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bot_items_added_total")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(true)

	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
