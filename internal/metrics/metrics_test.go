package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sonuudigital/lovecakes/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	reg := metrics.NewRegistry()

	reg.ObserveRequest(http.MethodGet, "GET /product/{id}", http.StatusOK, 20*time.Millisecond)
	reg.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	reg.CacheLookup("product", true)
	reg.CacheLookup("product", false)
	reg.CacheLookup("product", false)
	reg.CartItemAdded(false, false)
	reg.CartItemAdded(true, true)
	reg.OutboxEvent(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("GET", "GET /product/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheLookups.WithLabelValues("product", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.CacheLookups.WithLabelValues("product", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CartItemAdds.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CartItemAdds.WithLabelValues("merged_capped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OutboxEvents.WithLabelValues("published")))

	rr := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "lovecakes_cache_lookups_total")
}

func TestNilRegistry(t *testing.T) {
	var reg *metrics.Registry

	assert.NotPanics(t, func() {
		reg.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		reg.CacheLookup("cart", true)
		reg.CartItemAdded(true, false)
		reg.OutboxEvent(false)
	})
}
