package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lovecakes"

// Registry holds the storefront's Prometheus collectors. A nil *Registry is
// valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	CacheLookups *prometheus.CounterVec
	CartItemAdds *prometheus.CounterVec
	OutboxEvents *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Redis cache lookups by cache type and result",
			},
			[]string{"cache_type", "result"},
		),

		CartItemAdds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_item_adds_total",
				Help:      "Successful cart item adds by outcome",
			},
			[]string{"outcome"},
		),

		OutboxEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_total",
				Help:      "Outbox events processed by the relayer, by result",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests,
		r.HTTPDuration,
		r.CacheLookups,
		r.CartItemAdds,
		r.OutboxEvents,
	)
	return r
}

func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (r *Registry) CacheLookup(cacheType string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookups.WithLabelValues(cacheType, result).Inc()
}

func (r *Registry) CartItemAdded(merged, capped bool) {
	if r == nil {
		return
	}
	outcome := "inserted"
	switch {
	case capped:
		outcome = "merged_capped"
	case merged:
		outcome = "merged"
	}
	r.CartItemAdds.WithLabelValues(outcome).Inc()
}

func (r *Registry) OutboxEvent(published bool) {
	if r == nil {
		return
	}
	result := "failed"
	if published {
		result = "published"
	}
	r.OutboxEvents.WithLabelValues(result).Inc()
}

func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
