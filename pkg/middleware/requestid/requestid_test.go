package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, incoming string) (header, fromGin, fromCtx string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header().Get(Header), fromGin, fromCtx
}

func TestMiddlewareGeneratesID(t *testing.T) {
	header, fromGin, fromCtx := serve(t, "")

	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, fromGin)
	assert.Equal(t, header, fromCtx)
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	header, fromGin, _ := serve(t, "lb-7f3a:0001")
	assert.Equal(t, "lb-7f3a:0001", header)
	assert.Equal(t, "lb-7f3a:0001", fromGin)
}

func TestMiddlewareReplacesUnsafeID(t *testing.T) {
	for _, incoming := range []string{
		"evil\nlevel=error msg=forged",
		"has spaces",
		strings.Repeat("a", 65),
	} {
		header, _, _ := serve(t, incoming)
		_, err := uuid.Parse(header)
		assert.NoError(t, err, incoming)
	}
}

func TestFieldWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, Value(c))
	assert.Equal(t, "", Field(c).Key)

	c.Request = c.Request.WithContext(WithID(c.Request.Context(), "job-1"))
	assert.Equal(t, "job-1", Value(c))
	assert.Equal(t, "request_id", Field(c).Key)
	assert.Equal(t, "job-1", ContextField(c.Request.Context()).String)
}
