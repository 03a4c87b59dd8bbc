package department

import (
	departmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/department"
)

// Department is a plant department; Code is its dashboard route segment.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// MtcEngBurau is the code of the department with a dedicated dashboard page.
const MtcEngBurau = "mtceng-burau"

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:   d.ID,
		Name: d.Name,
		Code: d.Code,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:   d.ID,
		Name: d.Name,
		Code: d.Code,
	}
}

// Defaults are the departments created by the seeder.
func Defaults() []*Department {
	return []*Department{
		{Code: MtcEngBurau, Name: "MTC ENG BURAU"},
		{Code: "production", Name: "Production"},
		{Code: "utility", Name: "Utility"},
		{Code: "hse", Name: "Health, Safety & Environment"},
	}
}
