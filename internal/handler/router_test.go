package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterAuthGuardsWrites(t *testing.T) {
	app := newTestApp(t, true)

	rec := do(app.router, http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app.router, http.MethodPost, "/api/v1/students", `{"student_id":"ZS001"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeEnvelope(t, rec).ErrorType)

	rec = do(app.router, http.MethodPost, "/api/v1/students", `{"student_id":"ZS001"}`, "Authorization", "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(app.router, http.MethodPost, "/api/v1/students", `{"student_id":"ZS001"}`, "Authorization", "Bearer good")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouterWritesOpenWithoutAuth(t *testing.T) {
	app := newTestApp(t, false)

	rec := do(app.router, http.MethodDelete, "/api/v1/students/"+studentUUID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterLoginAndMe(t *testing.T) {
	app := newTestApp(t, true)

	rec := do(app.router, http.MethodPost, "/api/v1/auth/login", `{"email":"admin@campus.local","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(app.router, http.MethodPost, "/api/v1/auth/login", `{"email":"admin@campus.local","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", decodeEnvelope(t, rec).Data["access_token"])

	rec = do(app.router, http.MethodGet, "/api/v1/auth/me", "", "Authorization", "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@campus.local", decodeEnvelope(t, rec).Data["email"])
}

func TestRouterOpsEndpoints(t *testing.T) {
	app := newTestApp(t, false)

	rec := do(app.router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app.router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app.router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(app.router, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decodeEnvelope(t, rec).Message)

	rec = do(app.router, http.MethodOptions, "/api/v1/students", "", "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPageHandlerRendersHTML(t *testing.T) {
	app := newTestApp(t, false)

	rec := do(app.router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/students")

	rec = do(app.router, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CS101")

	rec = do(app.router, http.MethodGet, "/students?search=x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ZS001")
	assert.Contains(t, body, "x&lt;b&gt;")
	assert.NotContains(t, body, "x<b>")

	rec = do(app.router, http.MethodGet, "/borrows/overdue", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}
