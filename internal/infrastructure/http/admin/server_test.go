package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer() *Server {
	cfg := &config.Config{
		App:        config.AppConfig{Name: "mealplanner", Environment: "test"},
		Database:   config.DatabaseConfig{Driver: "postgres", Password: "hunter2"},
		Auth:       config.AuthConfig{JWTSecret: "super-secret"},
		Monitoring: config.MonitoringConfig{MetricsPort: 9091},
	}
	return NewServer(cfg, zap.NewNop(), monitoring.NewMetrics(monitoring.NewRegistry()))
}

func TestAdminServer_Metrics(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestAdminServer_ConfigIsRedacted(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/config", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "super-secret")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "App")
}

func TestAdminServer_Profiler(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminServer_Address(t *testing.T) {
	assert.Equal(t, ":9091", newTestServer().server.Addr)
}
