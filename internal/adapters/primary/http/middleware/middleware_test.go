package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logging(), Metrics())
	r.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(contextRequestID))
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/items/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.Equal(t, w.Header().Get(headerRequestID), w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	r := setupRouter()

	req, _ := http.NewRequest("GET", "/items/1", nil)
	req.Header.Set(headerRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(headerRequestID))
	assert.Equal(t, "req-123", w.Body.String())
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	r := setupRouter()

	for _, path := range []string{"/items/1", "/items/2"} {
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(requestDuration))
}
