// Package metrics exposes Prometheus collectors for the HTTP layer, the
// access gate and domain events.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plant_dashboard"

type Collector struct {
	gateDecisions   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	domainEvents    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	signInThrottled prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions by resource and outcome.",
		}, []string{"resource", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published on the event bus.",
		}, []string{"event_type"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard summary cache lookups by result.",
		}, []string{"result"}),
		signInThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_in_throttled_total",
			Help:      "Sign-in attempts rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.httpRequests,
		c.httpDuration,
		c.domainEvents,
		c.cacheLookups,
		c.signInThrottled,
	)
	return c
}

// RecordDecision satisfies access.DecisionRecorder.
func (c *Collector) RecordDecision(resource, outcome string) {
	c.gateDecisions.WithLabelValues(resource, outcome).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordThrottled() {
	c.signInThrottled.Inc()
}

// CountEvents subscribes a counter to every domain event type.
func (c *Collector) CountEvents(bus *events.EventBus) {
	for _, t := range events.Types() {
		bus.Subscribe(t, func(ctx context.Context, e events.Event) error {
			c.domainEvents.WithLabelValues(e.EventType()).Inc()
			return nil
		})
	}
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
