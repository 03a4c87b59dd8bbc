package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/plant-dashboard/internal/category"
	categoryPostgres "github.com/frahmantamala/plant-dashboard/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/category"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		service *category.Service
		handler *category.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.DataCategory{})).To(Succeed())

		service = category.NewService(categoryPostgres.NewCategoryRepository(db), slogger)
		handler = category.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		_, err = service.EnsureDefaults(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(service.SetActive(context.Background(), category.EnergyConsumption, false)).To(Succeed())
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(7))
		Expect(response.Categories[1].Name).To(Equal("KTA_TTA"))
		Expect(response.Categories[1].Label).To(Equal("KTA/TTA"))
	})

	It("should return 500 when the table is missing", func() {
		Expect(db.Migrator().DropTable(&categoryDatamodel.DataCategory{})).To(Succeed())

		w := httptest.NewRecorder()
		handler.GetCategories(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	Describe("GET /categories/{key}", func() {
		serve := func(key string) *httptest.ResponseRecorder {
			r := chi.NewRouter()
			r.Get("/api/v1/categories/{key}", handler.GetCategory)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories/"+key, nil))
			return w
		}

		It("returns an active category", func() {
			w := serve("kpi-utama")
			Expect(w.Code).To(Equal(http.StatusOK))
			var c category.CategoryResponse
			Expect(json.NewDecoder(w.Body).Decode(&c)).To(Succeed())
			Expect(c.Name).To(Equal("KPI_UTAMA"))
		})

		It("hides an inactive category", func() {
			Expect(serve("energy-consumption").Code).To(Equal(http.StatusNotFound))
		})

		It("rejects keys outside the enumeration", func() {
			w := serve("payroll")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("INVALID_CATEGORY"))
		})
	})
})
