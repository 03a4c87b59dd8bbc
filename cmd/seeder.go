package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/auth"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	categoryPostgres "github.com/frahmantamala/plant-dashboard/internal/category/postgres"
	equipmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	departmentPostgres "github.com/frahmantamala/plant-dashboard/internal/department/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	equipmentPostgres "github.com/frahmantamala/plant-dashboard/internal/equipment/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/user"
	userPostgres "github.com/frahmantamala/plant-dashboard/internal/user/postgres"
	"github.com/frahmantamala/plant-dashboard/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedPassword    string
	seedSampleAsset bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference and sample data",
	Long:  `Seed departments, data categories, equipment statuses and demo users. Existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runSeed(ctx)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for the demo users")
	seedCmd.Flags().BoolVar(&seedSampleAsset, "samples", true, "also seed sample equipment")
}

type seedUser struct {
	Username   string
	Name       string
	Role       string
	Department string
}

var demoUsers = []seedUser{
	{Username: "admin", Name: "Plant Admin", Role: "ADMIN"},
	{Username: "planner", Name: "Maintenance Planner", Role: "PLANNER"},
	{Username: "tech.mtc", Name: "MTC Technician", Role: "TECHNICIAN", Department: department.MtcEngBurau},
	{Username: "worker.prod", Name: "Production Operator", Role: "WORKER", Department: "production"},
}

type seedEquipment struct {
	Code        string
	Name        string
	Category    string
	Status      equipment.StatusCode
	Departments []string
}

var sampleEquipment = []seedEquipment{
	{Code: "P-101", Name: "Feed water pump", Category: "pump", Status: equipment.StatusOperational, Departments: []string{department.MtcEngBurau, "utility"}},
	{Code: "P-102", Name: "Condensate pump", Category: "pump", Status: equipment.StatusStandby, Departments: []string{department.MtcEngBurau}},
	{Code: "C-201", Name: "Air compressor", Category: "compressor", Status: equipment.StatusMaintenance, Departments: []string{department.MtcEngBurau, "production"}},
	{Code: "B-301", Name: "Package boiler", Category: "boiler", Status: equipment.StatusOperational, Departments: []string{"utility"}},
	{Code: "CV-401", Name: "Main conveyor", Category: "conveyor", Status: equipment.StatusBreakdown, Departments: []string{"production"}},
}

var equipmentCategoryNames = map[string]string{
	"pump":       "Pumps",
	"compressor": "Compressors",
	"boiler":     "Boilers",
	"conveyor":   "Conveyors",
}

func runSeed(ctx context.Context) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
	lg := logger.L()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer sqlxDB.Close()

	gormDB, err := initGorm(sqlxDB)
	if err != nil {
		return fmt.Errorf("failed to init gorm: %w", err)
	}

	departments := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), lg)
	if _, err := departments.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed departments: %w", err)
	}

	categories := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	if _, err := categories.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed data categories: %w", err)
	}

	equipmentRepo := equipmentPostgres.NewEquipmentRepository(gormDB)
	if err := equipmentRepo.EnsureStatuses(ctx); err != nil {
		return fmt.Errorf("failed to seed equipment statuses: %w", err)
	}

	users := user.NewService(userPostgres.NewRepository(sqlxDB), func(password string) (string, error) {
		return auth.HashPassword(password, cfg.Security.BCryptCost)
	})
	for _, u := range demoUsers {
		dto := user.CreateUserDTO{Username: u.Username, Name: u.Name, Password: seedPassword, Role: u.Role}
		if u.Department != "" {
			d, err := departments.GetByCode(ctx, u.Department)
			if err != nil {
				return fmt.Errorf("failed to resolve department %s: %w", u.Department, err)
			}
			dto.DepartmentID = &d.ID
		}
		created, err := users.EnsureUser(ctx, dto)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		if created {
			lg.Info("seeded user", "username", u.Username, "role", u.Role)
		}
	}

	if !seedSampleAsset {
		return nil
	}
	return seedSampleEquipment(ctx, equipmentRepo, departments)
}

func seedSampleEquipment(ctx context.Context, repo *equipmentPostgres.EquipmentRepository, departments *department.Service) error {
	lg := logger.L()
	now := time.Now()
	for _, e := range sampleEquipment {
		catID, err := repo.EnsureCategory(ctx, e.Category, equipmentCategoryNames[e.Category])
		if err != nil {
			return fmt.Errorf("failed to seed equipment category %s: %w", e.Category, err)
		}
		status, err := repo.GetStatusByCode(ctx, e.Status)
		if err != nil {
			return err
		}
		if status == nil {
			return fmt.Errorf("equipment status %s is missing", e.Status)
		}

		deptIDs := make([]int64, 0, len(e.Departments))
		for _, code := range e.Departments {
			d, err := departments.GetByCode(ctx, code)
			if err != nil {
				return fmt.Errorf("failed to resolve department %s: %w", code, err)
			}
			deptIDs = append(deptIDs, d.ID)
		}

		row := &equipmentDatamodel.Equipment{
			Code:             e.Code,
			Name:             e.Name,
			CategoryID:       &catID,
			CurrentStatusID:  status.ID,
			LastStatusChange: &now,
		}
		created, err := repo.Create(ctx, row, deptIDs)
		if err != nil {
			return fmt.Errorf("failed to seed equipment %s: %w", e.Code, err)
		}
		if created {
			lg.Info("seeded equipment", "code", e.Code, "status", e.Status)
		}
	}
	return nil
}
