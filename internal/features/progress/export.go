package progress

import (
	"fmt"

	"go-lms/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Progress"

var exportColumns = []string{
	"Username", "Email", "Completed Lessons", "Total Lessons", "Completion %", "Completed", "Completed At", "Last Updated",
}

// writeProgressWorkbook renders the learners' progress on one module as an xlsx workbook.
func writeProgressWorkbook(moduleTitle string, rows []LearnerProgress) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for r, row := range rows {
		completedAt := ""
		if row.CompletedAt != nil {
			completedAt = row.CompletedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			row.Username,
			row.Email,
			row.CompletedLessons,
			row.TotalLessons,
			row.CompletionPercentage,
			row.IsCompleted,
			completedAt,
			row.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	slug := utils.Slugify(moduleTitle)
	if slug == "" {
		slug = "module"
	}
	return buffer.Bytes(), fmt.Sprintf("%s-progress.xlsx", slug), nil
}
