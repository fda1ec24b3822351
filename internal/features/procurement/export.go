package procurement

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"ID", "Requester", "Department", "Items", "Total Cost",
	"Stage", "Status", "Justification", "Created At",
}

// buildExportWorkbook flattens requests into a single sheet, one row per
// request with items joined into one cell.
func buildExportWorkbook(requests []ProcurementRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Procurement"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, req := range requests {
		items := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		}

		row := []interface{}{
			req.ID.Hex(),
			req.RaisedBy.Hex(),
			req.DepartmentID.Hex(),
			strings.Join(items, "; "),
			req.TotalCost,
			req.Workflow.Stage,
			string(req.Workflow.Status),
			req.Justification,
			req.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
