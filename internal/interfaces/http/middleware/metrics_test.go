package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/context/:key", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	for _, key := range []string{"notes", "plan", "todo"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/context/"+key, nil))
	}

	count := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/context/:key", "200"))
	assert.Equal(t, float64(3), count, "all keys share one route label")
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	router := gin.New()
	router.Use(m.Middleware())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	count := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, float64(1), count)
}
