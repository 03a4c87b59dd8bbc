package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers async events to every handler", func() {
		var calls int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeReportApproved, func(ctx context.Context, e events.Event) error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}

		Expect(bus.Publish(context.Background(), events.NewReportEvent(events.EventTypeReportApproved, 1, 2, "kpi-utama", 3, ""))).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(3)))
	})

	It("keeps running handlers after the publishing context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var sawErr error
		bus.Subscribe(events.EventTypeReportRejected, func(ctx context.Context, e events.Event) error {
			sawErr = ctx.Err()
			return nil
		})
		cancel()
		Expect(bus.Publish(ctx, events.NewReportEvent(events.EventTypeReportRejected, 1, 2, "kpi-utama", 3, "typo"))).To(Succeed())
		bus.Wait()
		Expect(sawErr).NotTo(HaveOccurred())
	})

	It("returns handler errors from PublishSync", func() {
		bus.Subscribe(events.EventTypeEquipmentStatusChanged, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})
		err := bus.PublishSync(context.Background(), events.NewEquipmentStatusChangedEvent(1, "OPERATIONAL", "BREAKDOWN", 2, []int64{4}))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("ignores events with no subscribers", func() {
		Expect(bus.PublishSync(context.Background(), events.NewReportEvent(events.EventTypeReportSubmitted, 1, 2, "kta-tta", 3, ""))).To(Succeed())
	})

	It("exposes affected departments", func() {
		var e events.Event = events.NewEquipmentStatusChangedEvent(1, "STANDBY", "OPERATIONAL", 2, []int64{4, 5})
		scoped, ok := e.(events.DepartmentScoped)
		Expect(ok).To(BeTrue())
		Expect(scoped.DepartmentIDs()).To(ConsistOf(int64(4), int64(5)))
	})

	It("isolates a panicking handler", func() {
		var calls int32
		bus.Subscribe(events.EventTypeReportApproved, func(ctx context.Context, e events.Event) error {
			panic("bad handler")
		})
		bus.Subscribe(events.EventTypeReportApproved, func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.HandlerCount(events.EventTypeReportApproved)).To(Equal(2))
		Expect(bus.Publish(context.Background(), events.NewReportEvent(events.EventTypeReportApproved, 1, 2, "kpi-utama", 3, ""))).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))

		err := bus.PublishSync(context.Background(), events.NewReportEvent(events.EventTypeReportApproved, 1, 2, "kpi-utama", 3, ""))
		Expect(err).To(MatchError(ContainSubstring("panicked")))
	})

	It("lists every emitted type once", func() {
		Expect(events.Types()).To(HaveLen(4))
		Expect(events.Types()).To(ContainElement(events.EventTypeEquipmentStatusChanged))
	})
})
