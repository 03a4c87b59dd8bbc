package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/metrics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

// seriesCount returns the number of labelled series in the named family.
func seriesCount(reg *prometheus.Registry, name string) int {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	for _, mf := range families {
		if mf.GetName() == name {
			return len(mf.GetMetric())
		}
	}
	return 0
}

var _ = Describe("Collector", func() {
	var (
		reg *prometheus.Registry
		c   *metrics.Collector
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		c = metrics.NewCollector(reg)
	})

	It("counts gate decisions per resource and outcome", func() {
		c.RecordDecision("page:approvals", "allow")
		c.RecordDecision("page:approvals", "redirect_fallback")
		c.RecordDecision("page:approvals", "redirect_fallback")

		Expect(seriesCount(reg, "plant_dashboard_gate_decisions_total")).To(Equal(2))
	})

	It("records http requests and cache lookups", func() {
		c.RecordHTTPRequest(http.MethodGet, "/dashboard", http.StatusOK, 20*time.Millisecond)
		c.RecordCacheLookup(true)
		c.RecordCacheLookup(false)
		c.RecordThrottled()

		Expect(seriesCount(reg, "plant_dashboard_http_requests_total")).To(Equal(1))
		Expect(seriesCount(reg, "plant_dashboard_dashboard_cache_lookups_total")).To(Equal(2))
		Expect(seriesCount(reg, "plant_dashboard_sign_in_throttled_total")).To(Equal(1))
	})

	It("counts published domain events", func() {
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		c.CountEvents(bus)

		Expect(bus.PublishSync(context.Background(), events.NewReportEvent(events.EventTypeReportApproved, 1, 2, "kta-tta", 3, ""))).To(Succeed())
		Expect(seriesCount(reg, "plant_dashboard_domain_events_total")).To(Equal(1))
	})

	It("serves the exposition format", func() {
		c.RecordDecision("page:dashboard", "allow")
		rec := httptest.NewRecorder()
		metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`plant_dashboard_gate_decisions_total{outcome="allow",resource="page:dashboard"} 1`))
	})
})
