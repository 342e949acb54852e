package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	intconfig "campushub/internal/config"
	"campushub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetLogger(zap.NewNop())
	return NewRouter(intconfig.Env{
		SessionSecret:  "router-test-secret",
		AdminAPIKey:    "admin-key",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
	})
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(testRouter(t), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	w := serve(testRouter(t), http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"not_found"`)
}

func TestAgentConsoleNeedsSession(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/api/agent/me", "/api/agent/buses", "/api/agent/trips", "/api/agent/bookings"} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := serve(r, http.MethodGet, "/api/agent/buses", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesNeedKey(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/api/bookings", "/api/bookings/export", "/api/businesses/admin"} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = serve(r, http.MethodGet, path, map[string]string{"X-Admin-Key": "wrong"})
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestRoutesListsMountedEndpoints(t *testing.T) {
	w := serve(testRouter(t), http.MethodGet, "/api/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/transport/trips/:id/bookings")
	assert.Contains(t, w.Body.String(), "/api/agent/bookings/:id/confirm")
	assert.Contains(t, w.Body.String(), "/api/business/order/:id/deliver")
}

func TestDeliverOrderNeedsBusinessSession(t *testing.T) {
	w := serve(testRouter(t), http.MethodPost, "/api/business/order/21/deliver", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	w := serve(testRouter(t), http.MethodOptions, "/api/properties", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
