package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMiddleware_SecurityAndTracingHeaders(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
}

func TestSetupMiddleware_LimiterKeepsCORSAndSkipsPreflight(t *testing.T) {
	ts := newTestServer(t, nil)
	app := fiber.New()
	ts.SetupMiddleware(app)
	app.Post("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(method string) *http.Response {
		req := httptest.NewRequest(method, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp
	}

	for i := 0; i < 100; i++ {
		require.Equal(t, fiber.StatusOK, send(http.MethodPost).StatusCode)
	}

	limited := send(http.MethodPost)
	assert.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, "http://localhost:5173", limited.Header.Get("Access-Control-Allow-Origin"))

	preflight := send(http.MethodOptions)
	assert.Equal(t, fiber.StatusNoContent, preflight.StatusCode)
	assert.Equal(t, "http://localhost:5173", preflight.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, preflight.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestReadinessCheck(t *testing.T) {
	t.Run("without redis", func(t *testing.T) {
		ts := newTestServer(t, nil)
		status, body := ts.do(t, http.MethodGet, "/health/ready", 0, nil)
		assert.Equal(t, http.StatusOK, status)
		checks := decode[map[string]any](t, body)["checks"].(map[string]any)
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "disabled", checks["redis"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		ts := newTestServer(t, rdb)
		mr.Close()

		status, body := ts.do(t, http.MethodGet, "/health/ready", 0, nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "unhealthy", decode[map[string]any](t, body)["status"])
	})

	t.Run("database closed", func(t *testing.T) {
		ts := newTestServer(t, nil)
		sqlDB, err := ts.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		status, _ := ts.do(t, http.MethodGet, "/health/ready", 0, nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})
}

func TestSetupRoutes_PublicEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	status, body := ts.do(t, http.MethodGet, "/metrics", 0, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "rizq_active_websockets")

	status, body = ts.do(t, http.MethodGet, "/api/swagger/doc.json", 0, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "/deals/{id}/status")

	for _, path := range []string{"/api/deals", "/api/conversations", "/api/messages/unread-count", "/api/items/mine"} {
		status, _ := ts.do(t, http.MethodGet, path, 0, nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}
