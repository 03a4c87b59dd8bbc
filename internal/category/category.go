package category

import (
	"strings"
	"time"

	categoryDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/category"
)

// Category is a catalogue row describing one DataCategory.
type Category struct {
	ID          int64        `json:"id"`
	Key         DataCategory `json:"key"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	IsActive    bool         `json:"is_active"`
	SortOrder   int          `json:"sort_order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (c *Category) IsActiveCategory() bool {
	return c.IsActive && c.Key.Valid()
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Key:         c.Key,
		Name:        c.Key.Name(),
		Label:       c.Label,
		Description: c.Description,
	}
}

func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

// NewCategory builds the default catalogue row for a key.
func NewCategory(key DataCategory, description string, sortOrder int) *Category {
	now := time.Now()
	return &Category{
		Key:         key,
		Label:       DefaultLabel(key),
		Description: description,
		IsActive:    true,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DefaultLabel turns "kpi-utama" into "Kpi Utama"; KTA/TTA stays upper case.
func DefaultLabel(key DataCategory) string {
	if key == KtaTta {
		return "KTA/TTA"
	}
	parts := strings.Split(string(key), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Defaults returns the catalogue rows seeded for every constant.
func Defaults() []*Category {
	descriptions := map[DataCategory]string{
		OperationalReports: "Daily and shift operational reports",
		KtaTta:             "Unsafe conditions and unsafe acts findings",
		KpiUtama:           "Main key performance indicators",
		MaintenanceRoutine: "Routine and preventive maintenance records",
		CriticalIssues:     "Open critical equipment and process issues",
		SafetyIncidents:    "Recorded safety incidents",
		EnergyTargets:      "Energy usage targets",
		EnergyConsumption:  "Measured energy consumption",
	}
	out := make([]*Category, 0, len(ordered))
	for i, e := range ordered {
		out = append(out, NewCategory(e.Key, descriptions[e.Key], i+1))
	}
	return out
}

func ToDataModel(c *Category) *categoryDatamodel.DataCategory {
	return &categoryDatamodel.DataCategory{
		ID:          c.ID,
		Key:         string(c.Key),
		Label:       c.Label,
		Description: c.Description,
		IsActive:    c.IsActive,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.DataCategory) *Category {
	return &Category{
		ID:          c.ID,
		Key:         DataCategory(c.Key),
		Label:       c.Label,
		Description: c.Description,
		IsActive:    c.IsActive,
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
