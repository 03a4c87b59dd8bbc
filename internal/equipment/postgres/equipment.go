package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/plant-dashboard/internal"
	equipmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

var _ equipment.RepositoryAPI = (*EquipmentRepository)(nil)

func (r *EquipmentRepository) List(ctx context.Context, departmentID *int64) ([]*equipment.Equipment, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("CurrentStatus").
		Order("code ASC")
	if departmentID != nil {
		q = q.Where("id IN (?)", r.db.Table("equipment_departments").
			Select("equipment_id").
			Where("department_id = ?", *departmentID))
	}

	var rows []*equipmentDatamodel.Equipment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomain(ctx, rows)
}

func (r *EquipmentRepository) Get(ctx context.Context, id int64) (*equipment.Equipment, error) {
	var row equipmentDatamodel.Equipment
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("CurrentStatus").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.toDomain(ctx, []*equipmentDatamodel.Equipment{&row})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (r *EquipmentRepository) GetStatusByCode(ctx context.Context, code equipment.StatusCode) (*equipment.Status, error) {
	var row equipmentDatamodel.Status
	if err := r.db.WithContext(ctx).Where("code = ?", string(code)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return statusFromRow(&row), nil
}

func (r *EquipmentRepository) History(ctx context.Context, equipmentID int64) ([]*equipment.StatusChange, error) {
	var rows []struct {
		equipmentDatamodel.StatusChange
		FromCode *string `gorm:"column:from_code"`
		ToCode   string  `gorm:"column:to_code"`
	}
	err := r.db.WithContext(ctx).
		Table("equipment_status_changes AS c").
		Select("c.*, fs.code AS from_code, ts.code AS to_code").
		Joins("LEFT JOIN equipment_statuses fs ON fs.id = c.from_status_id").
		Joins("JOIN equipment_statuses ts ON ts.id = c.to_status_id").
		Where("c.equipment_id = ?", equipmentID).
		Order("c.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*equipment.StatusChange, 0, len(rows))
	for _, row := range rows {
		change := &equipment.StatusChange{
			ID:          row.ID,
			EquipmentID: row.EquipmentID,
			To:          equipment.StatusCode(row.ToCode),
			ChangedBy:   row.ChangedBy,
			Note:        row.Note,
			ChangedAt:   row.ChangedAt,
		}
		if row.FromCode != nil {
			from := equipment.StatusCode(*row.FromCode)
			change.From = &from
		}
		out = append(out, change)
	}
	return out, nil
}

// ApplyStatus appends the history row and moves the current status in one
// transaction. The update only matches while the row still has the expected
// prior status.
func (r *EquipmentRepository) ApplyStatus(ctx context.Context, update equipment.StatusUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&equipmentDatamodel.Equipment{}).
			Where("id = ? AND current_status_id = ?", update.EquipmentID, update.FromStatusID).
			Updates(map[string]interface{}{
				"current_status_id":  update.ToStatusID,
				"last_status_change": update.ChangedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.NewConflictError("equipment status was changed by someone else", internal.ErrCodeStatusUnchanged)
		}

		from := update.FromStatusID
		changedBy := update.ChangedBy
		return tx.Create(&equipmentDatamodel.StatusChange{
			EquipmentID:  update.EquipmentID,
			FromStatusID: &from,
			ToStatusID:   update.ToStatusID,
			ChangedBy:    &changedBy,
			Note:         update.Note,
			ChangedAt:    update.ChangedAt,
		}).Error
	})
}

// EnsureStatuses creates the status rows that are missing.
func (r *EquipmentRepository) EnsureStatuses(ctx context.Context) error {
	for i, code := range equipment.StatusCodes() {
		row := equipmentDatamodel.Status{Code: string(code), Name: statusName(code), SortOrder: i + 1}
		if err := r.db.WithContext(ctx).Where("code = ?", row.Code).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *EquipmentRepository) EnsureCategory(ctx context.Context, code, name string) (int64, error) {
	row := equipmentDatamodel.Category{Code: code, Name: name}
	if err := r.db.WithContext(ctx).Where("code = ?", code).FirstOrCreate(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// Create inserts equipment with its initial status history entry and
// department links. Existing codes are left untouched.
func (r *EquipmentRepository) Create(ctx context.Context, row *equipmentDatamodel.Equipment, departmentIDs []int64) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&equipmentDatamodel.Equipment{}).Where("code = ?", row.Code).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		if err := tx.Omit("Category", "CurrentStatus").Create(row).Error; err != nil {
			return err
		}
		changedAt := row.CreatedAt
		if row.LastStatusChange != nil {
			changedAt = *row.LastStatusChange
		}
		if err := tx.Create(&equipmentDatamodel.StatusChange{
			EquipmentID: row.ID,
			ToStatusID:  row.CurrentStatusID,
			Note:        "initial status",
			ChangedAt:   changedAt,
		}).Error; err != nil {
			return err
		}
		for _, deptID := range departmentIDs {
			if err := tx.Create(&equipmentDatamodel.EquipmentDepartment{EquipmentID: row.ID, DepartmentID: deptID}).Error; err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	return created, err
}

func (r *EquipmentRepository) toDomain(ctx context.Context, rows []*equipmentDatamodel.Equipment) ([]*equipment.Equipment, error) {
	if len(rows) == 0 {
		return []*equipment.Equipment{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var links []struct {
		EquipmentID int64  `gorm:"column:equipment_id"`
		ID          int64  `gorm:"column:id"`
		Code        string `gorm:"column:code"`
		Name        string `gorm:"column:name"`
	}
	err := r.db.WithContext(ctx).
		Table("equipment_departments AS ed").
		Select("ed.equipment_id, d.id, d.code, d.name").
		Joins("JOIN departments d ON d.id = ed.department_id").
		Where("ed.equipment_id IN ?", ids).
		Order("d.name ASC").
		Scan(&links).Error
	if err != nil {
		return nil, err
	}

	byEquipment := make(map[int64][]equipment.DepartmentRef, len(rows))
	for _, l := range links {
		byEquipment[l.EquipmentID] = append(byEquipment[l.EquipmentID], equipment.DepartmentRef{ID: l.ID, Code: l.Code, Name: l.Name})
	}

	out := make([]*equipment.Equipment, 0, len(rows))
	for _, row := range rows {
		e := &equipment.Equipment{
			ID:                   row.ID,
			Code:                 row.Code,
			Name:                 row.Name,
			LastStatusChange:     row.LastStatusChange,
			EquipmentDepartments: byEquipment[row.ID],
		}
		if e.EquipmentDepartments == nil {
			e.EquipmentDepartments = []equipment.DepartmentRef{}
		}
		if row.Category != nil {
			e.Category = &equipment.CategoryRef{ID: row.Category.ID, Code: row.Category.Code, Name: row.Category.Name}
		}
		if row.CurrentStatus != nil {
			e.CurrentStatus = *statusFromRow(row.CurrentStatus)
		}
		out = append(out, e)
	}
	return out, nil
}

func statusFromRow(row *equipmentDatamodel.Status) *equipment.Status {
	return &equipment.Status{ID: row.ID, Code: equipment.StatusCode(row.Code), Name: row.Name}
}

func statusName(code equipment.StatusCode) string {
	switch code {
	case equipment.StatusOperational:
		return "Operational"
	case equipment.StatusStandby:
		return "Standby"
	case equipment.StatusMaintenance:
		return "Under Maintenance"
	case equipment.StatusBreakdown:
		return "Breakdown"
	default:
		return string(code)
	}
}
