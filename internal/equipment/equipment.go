package equipment

import (
	"strings"
	"time"
)

type StatusCode string

const (
	StatusOperational StatusCode = "OPERATIONAL"
	StatusStandby     StatusCode = "STANDBY"
	StatusMaintenance StatusCode = "MAINTENANCE"
	StatusBreakdown   StatusCode = "BREAKDOWN"
)

var statusOrder = []StatusCode{StatusOperational, StatusStandby, StatusMaintenance, StatusBreakdown}

// StatusCodes returns the known statuses in display order.
func StatusCodes() []StatusCode {
	out := make([]StatusCode, len(statusOrder))
	copy(out, statusOrder)
	return out
}

func ParseStatus(s string) (StatusCode, bool) {
	c := StatusCode(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range statusOrder {
		if c == k {
			return c, true
		}
	}
	return "", false
}

type Status struct {
	ID   int64      `json:"id"`
	Code StatusCode `json:"code"`
	Name string     `json:"name"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type DepartmentRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Equipment is a plant asset with exactly one current status.
type Equipment struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Category             *CategoryRef    `json:"category,omitempty"`
	CurrentStatus        Status          `json:"currentStatus"`
	LastStatusChange     *time.Time      `json:"lastStatusChange,omitempty"`
	EquipmentDepartments []DepartmentRef `json:"equipmentDepartments"`
}

func (e *Equipment) DepartmentIDs() []int64 {
	ids := make([]int64, 0, len(e.EquipmentDepartments))
	for _, d := range e.EquipmentDepartments {
		ids = append(ids, d.ID)
	}
	return ids
}

type StatusChange struct {
	ID          int64       `json:"id"`
	EquipmentID int64       `json:"equipmentId"`
	From        *StatusCode `json:"from,omitempty"`
	To          StatusCode  `json:"to"`
	ChangedBy   *int64      `json:"changedBy,omitempty"`
	Note        string      `json:"note,omitempty"`
	ChangedAt   time.Time   `json:"changedAt"`
}

// StatusUpdate is one transition applied by the repository.
type StatusUpdate struct {
	EquipmentID  int64
	FromStatusID int64
	ToStatusID   int64
	ChangedBy    int64
	Note         string
	ChangedAt    time.Time
}

// StatusCounts maps each status to the number of equipment in it.
type StatusCounts map[StatusCode]int

// Filled returns a copy with every known status present.
func (c StatusCounts) Filled() StatusCounts {
	out := make(StatusCounts, len(statusOrder))
	for _, s := range statusOrder {
		out[s] = c[s]
	}
	return out
}
