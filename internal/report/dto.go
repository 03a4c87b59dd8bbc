package report

// SubmitReportDTO is the body of POST /reports. DepartmentID defaults to the
// submitter's department.
type SubmitReportDTO struct {
	DepartmentID *int64   `json:"departmentId,omitempty"`
	Category     string   `json:"category"`
	Title        string   `json:"title"`
	Notes        string   `json:"notes,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	PeriodDate   string   `json:"periodDate"`
}

type RejectReportDTO struct {
	Reason string `json:"reason"`
}

// Filter narrows report listings. Zero values mean "any".
type Filter struct {
	DepartmentID *int64
	Category     string
	Status       string
	Limit        int
	Offset       int
}

type ListResponse struct {
	Reports []*Report `json:"reports"`
}
