package promhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remerge/go-prom/prom"
)

func newTestRegistry(t *testing.T) *prom.Registry {
	t.Helper()
	r, err := prom.NewRegistry("test")
	require.NoError(t, err)
	g, err := prom.NewGauge("up", "Whether the target is up.")
	require.NoError(t, err)
	require.NoError(t, g.Set(1))
	require.NoError(t, r.RegisterMetric(g))
	return r
}

func TestHandler_ServesExposition(t *testing.T) {
	r := newTestRegistry(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(r).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; version=0.0.4", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "up 1\n")
}

func TestHandler_EmptyRegistryIsNoContent(t *testing.T) {
	r, err := prom.NewRegistry("empty")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(r).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_RejectsPost(t *testing.T) {
	r := newTestRegistry(t)

	req := httptest.NewRequest(http.MethodPost, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(r).ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGin_ServesExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newTestRegistry(t)

	engine := gin.New()
	engine.GET("/metrics", Gin(r))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "up 1\n")
}

func TestDefaultHandler_FallsBackToPromDefault(t *testing.T) {
	prom.DestroyDefault()
	defer prom.DestroyDefault()

	activeRegistrySet = false

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	DefaultHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSetActiveRegistry_OverridesDefault(t *testing.T) {
	r := newTestRegistry(t)
	SetActiveRegistry(r)
	defer func() { activeRegistrySet = false }()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	DefaultHandler().ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "up 1\n")
}
