package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/tasks/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/tasks/:id", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/tasks/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Uploads.WithLabelValues("ok").Inc()

	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "taskdesk_uploads_total"))
}
