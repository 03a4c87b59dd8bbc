package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reports"

var exportHeaders = []interface{}{
	"ID", "Department", "Category", "Title", "Value", "Unit",
	"Period", "Status", "Submitted By", "Submitted At", "Processed At", "Rejection Reason",
}

// WriteWorkbook renders reports into a single-sheet workbook.
func WriteWorkbook(w io.Writer, reports []*Report, departmentNames map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return err
	}

	for i, r := range reports {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.ID,
			departmentLabel(departmentNames, r.DepartmentID),
			r.Category.Name(),
			r.Title,
			valueOrEmpty(r.Value),
			r.Unit,
			r.PeriodDate.Format(PeriodLayout),
			r.Status,
			r.SubmittedBy,
			r.SubmittedAt.Format("2006-01-02 15:04"),
			"",
			"",
		}
		if r.ProcessedAt != nil {
			row[10] = r.ProcessedAt.Format("2006-01-02 15:04")
		}
		if r.RejectionReason != nil {
			row[11] = *r.RejectionReason
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "B", 25)
	_ = f.SetColWidth(exportSheet, "D", "D", 40)
	_ = f.SetColWidth(exportSheet, "J", "K", 18)
	_ = f.SetColWidth(exportSheet, "L", "L", 40)

	return f.Write(w)
}

func departmentLabel(names map[int64]string, id int64) interface{} {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func valueOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
