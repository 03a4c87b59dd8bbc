package equipment_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	departmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/department"
	equipmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	departmentPostgres "github.com/frahmantamala/plant-dashboard/internal/department/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	equipmentPostgres "github.com/frahmantamala/plant-dashboard/internal/equipment/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var _ = Describe("Equipment", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		repo      *equipmentPostgres.EquipmentRepository
		service   *equipment.Service
		publisher *capturingPublisher
		mtcID     int64
		prodID    int64
		pumpID    int64
		tech      *identity.Session
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&departmentDatamodel.Department{},
			&equipmentDatamodel.Category{},
			&equipmentDatamodel.Status{},
			&equipmentDatamodel.Equipment{},
			&equipmentDatamodel.EquipmentDepartment{},
			&equipmentDatamodel.StatusChange{},
		)).To(Succeed())

		deptService := department.NewService(departmentPostgres.NewDepartmentRepository(db), lg)
		_, err = deptService.EnsureDefaults(ctx)
		Expect(err).NotTo(HaveOccurred())
		mtc, err := deptService.GetByCode(ctx, department.MtcEngBurau)
		Expect(err).NotTo(HaveOccurred())
		prod, err := deptService.GetByCode(ctx, "production")
		Expect(err).NotTo(HaveOccurred())
		mtcID, prodID = mtc.ID, prod.ID

		repo = equipmentPostgres.NewEquipmentRepository(db)
		Expect(repo.EnsureStatuses(ctx)).To(Succeed())
		catID, err := repo.EnsureCategory(ctx, "pump", "Pumps")
		Expect(err).NotTo(HaveOccurred())
		operational, err := repo.GetStatusByCode(ctx, equipment.StatusOperational)
		Expect(err).NotTo(HaveOccurred())
		standby, err := repo.GetStatusByCode(ctx, equipment.StatusStandby)
		Expect(err).NotTo(HaveOccurred())

		pump := &equipmentDatamodel.Equipment{Code: "P-101", Name: "Feed pump", CategoryID: &catID, CurrentStatusID: operational.ID}
		created, err := repo.Create(ctx, pump, []int64{mtcID, prodID})
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		pumpID = pump.ID

		_, err = repo.Create(ctx, &equipmentDatamodel.Equipment{Code: "C-201", Name: "Compressor", CurrentStatusID: standby.ID}, []int64{prodID})
		Expect(err).NotTo(HaveOccurred())

		publisher = &capturingPublisher{}
		service = equipment.NewService(repo, deptService, publisher, lg)
		tech = &identity.Session{Identity: identity.Identity{ID: 9, Username: "tech"}, Role: identity.RoleTechnician}
	})

	Describe("ListByDepartment", func() {
		It("filters by department code", func() {
			items, err := service.ListByDepartment(ctx, department.MtcEngBurau)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Code).To(Equal("P-101"))
			Expect(items[0].Category.Name).To(Equal("Pumps"))
			Expect(items[0].CurrentStatus.Code).To(Equal(equipment.StatusOperational))
			Expect(items[0].EquipmentDepartments).To(HaveLen(2))
		})

		It("lists everything without a code", func() {
			items, err := service.ListByDepartment(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(equipment.CountByStatus(items)).To(Equal(equipment.StatusCounts{
				equipment.StatusOperational: 1,
				equipment.StatusStandby:     1,
				equipment.StatusMaintenance: 0,
				equipment.StatusBreakdown:   0,
			}))
		})

		It("reports unknown departments", func() {
			_, err := service.ListByDepartment(ctx, "finance")
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("UpdateStatus", func() {
		It("supersedes the current status and records history", func() {
			updated, err := service.UpdateStatus(ctx, tech, pumpID, equipment.UpdateStatusDTO{Status: "breakdown", Note: "bearing noise"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.CurrentStatus.Code).To(Equal(equipment.StatusBreakdown))
			Expect(updated.LastStatusChange).NotTo(BeNil())
			Expect(*updated.LastStatusChange).To(BeTemporally("~", time.Now(), 5*time.Second))

			history, err := service.History(ctx, pumpID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].To).To(Equal(equipment.StatusBreakdown))
			Expect(*history[0].From).To(Equal(equipment.StatusOperational))
			Expect(*history[0].ChangedBy).To(Equal(int64(9)))
			Expect(history[1].From).To(BeNil())

			Expect(publisher.events).To(HaveLen(1))
			evt := publisher.events[0].(*events.EquipmentStatusChangedEvent)
			Expect(evt.Departments).To(ConsistOf(mtcID, prodID))
		})

		It("rejects the status the equipment already has", func() {
			_, err := service.UpdateStatus(ctx, tech, pumpID, equipment.UpdateStatusDTO{Status: "OPERATIONAL"})
			Expect(err).To(Equal(internal.ErrStatusUnchanged))
			Expect(publisher.events).To(BeEmpty())
		})

		It("rejects unknown statuses", func() {
			_, err := service.UpdateStatus(ctx, tech, pumpID, equipment.UpdateStatusDTO{Status: "EXPLODED"})
			Expect(err).To(Equal(internal.ErrInvalidEquipmentStatus))
		})

		It("reports missing equipment", func() {
			_, err := service.UpdateStatus(ctx, tech, 999, equipment.UpdateStatusDTO{Status: "STANDBY"})
			Expect(err).To(Equal(internal.ErrEquipmentNotFound))
		})

		It("detects a concurrent transition", func() {
			standby, err := repo.GetStatusByCode(ctx, equipment.StatusStandby)
			Expect(err).NotTo(HaveOccurred())
			err = repo.ApplyStatus(ctx, equipment.StatusUpdate{EquipmentID: pumpID, FromStatusID: standby.ID, ToStatusID: standby.ID, ChangedAt: time.Now()})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))

			var count int64
			Expect(db.Model(&equipmentDatamodel.StatusChange{}).Where("equipment_id = ?", pumpID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := equipment.NewHandler(transport.NewBaseHandler(nil), service)
			router = chi.NewRouter()
			router.Get("/equipment", h.ListEquipment)
			router.Get("/equipment/{id}", h.GetEquipment)
			router.Get("/equipment/{id}/history", h.GetHistory)
			router.With(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithSession(r.Context(), tech)))
				})
			}).Patch("/equipment/{id}/status", h.UpdateStatus)
		})

		It("lists equipment for a department", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/equipment?department=mtceng-burau", nil))
			Expect(w.Code).To(Equal(http.StatusOK))

			var body equipment.ListResponse
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.Equipment).To(HaveLen(1))
		})

		It("patches the status", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/equipment/"+itoa(pumpID)+"/status", strings.NewReader(`{"status":"MAINTENANCE"}`))
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"MAINTENANCE"`))
		})

		It("returns 409 for an unchanged status", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/equipment/"+itoa(pumpID)+"/status", strings.NewReader(`{"status":"OPERATIONAL"}`))
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("rejects non numeric ids", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/equipment/abc", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for missing equipment history", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/equipment/999/history", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
