package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeReportSubmitted        = "report.submitted"
	EventTypeReportApproved         = "report.approved"
	EventTypeReportRejected         = "report.rejected"
	EventTypeEquipmentStatusChanged = "equipment.status_changed"
)

// Types lists every event type the application emits.
func Types() []string {
	return []string{
		EventTypeReportSubmitted,
		EventTypeReportApproved,
		EventTypeReportRejected,
		EventTypeEquipmentStatusChanged,
	}
}

// DepartmentScoped is implemented by events that affect one or more
// department dashboards.
type DepartmentScoped interface {
	DepartmentIDs() []int64
}

type ReportEvent struct {
	BaseEvent
	ReportID     int64  `json:"report_id"`
	DepartmentID int64  `json:"department_id"`
	Category     string `json:"category"`
	ActorID      int64  `json:"actor_id"`
	Reason       string `json:"reason,omitempty"`
}

func (e *ReportEvent) DepartmentIDs() []int64 {
	return []int64{e.DepartmentID}
}

func NewReportEvent(eventType string, reportID, departmentID int64, category string, actorID int64, reason string) *ReportEvent {
	data := map[string]interface{}{
		"report_id":     reportID,
		"department_id": departmentID,
		"category":      category,
		"actor_id":      actorID,
	}
	if reason != "" {
		data["reason"] = reason
	}
	return &ReportEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		ReportID:     reportID,
		DepartmentID: departmentID,
		Category:     category,
		ActorID:      actorID,
		Reason:       reason,
	}
}

type EquipmentStatusChangedEvent struct {
	BaseEvent
	EquipmentID int64   `json:"equipment_id"`
	FromStatus  string  `json:"from_status"`
	ToStatus    string  `json:"to_status"`
	ChangedBy   int64   `json:"changed_by"`
	Departments []int64 `json:"departments"`
}

func (e *EquipmentStatusChangedEvent) DepartmentIDs() []int64 {
	return e.Departments
}

func NewEquipmentStatusChangedEvent(equipmentID int64, from, to string, changedBy int64, departments []int64) *EquipmentStatusChangedEvent {
	return &EquipmentStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEquipmentStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"equipment_id": equipmentID,
				"from_status":  from,
				"to_status":    to,
				"changed_by":   changedBy,
				"departments":  departments,
			},
		},
		EquipmentID: equipmentID,
		FromStatus:  from,
		ToStatus:    to,
		ChangedBy:   changedBy,
		Departments: departments,
	}
}
