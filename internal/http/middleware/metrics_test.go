package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/articles/:article_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/articles/:article_id", "200"))
	beforeMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404"))

	for _, p := range []string{"/api/articles/1", "/api/articles/2", "/nowhere/3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/articles/:article_id", "200")) - before; got != 2 {
		t.Fatalf("expected 2 matched requests, got %v", got)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404")) - beforeMiss; got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
	if testutil.ToFloat64(httpInflight) != 0 {
		t.Fatalf("in-flight gauge should return to zero")
	}
}

func TestObserveAPIError(t *testing.T) {
	c := apiErrors.WithLabelValues("store", "400")
	before := testutil.ToFloat64(c)
	ObserveAPIError("store", http.StatusBadRequest)
	if testutil.ToFloat64(c)-before != 1 {
		t.Fatalf("api error counter not incremented")
	}
}
