package export

import (
	"fmt"

	"github.com/smukkama/aquasure-server/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	samplesSheet    = "Samples"
	complianceSheet = "Compliance"
	headerRow       = 4
)

// XLSX renders a workbook with a samples sheet laid out like the CSV export
// and a compliance sheet per standard and metal
func XLSX(r *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(samplesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: borders(),
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: borders()})

	f.SetCellValue(samplesSheet, "A1", r.Title)
	f.SetCellStyle(samplesSheet, "A1", "A1", titleStyle)
	f.SetRowHeight(samplesSheet, 1, 30)
	f.SetCellValue(samplesSheet, "A2", "Generated: "+r.GeneratedAt.Format("2006-01-02 15:04:05"))

	columns := r.Columns()
	for colIdx, label := range columns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, headerRow)
		f.SetCellValue(samplesSheet, cell, label)
		f.SetCellStyle(samplesSheet, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(colIdx + 1)
		f.SetColWidth(samplesSheet, col, col, 16)
	}

	for rowIdx, row := range r.Rows {
		values := []interface{}{
			row.SampleID, row.Project, row.Location, string(row.Metal),
			row.Concentration, row.HMPI, string(row.RiskLevel), row.Date,
		}
		for _, check := range row.Checks {
			if check.Limit != nil {
				values = append(values, *check.Limit)
			} else {
				values = append(values, "N/A")
			}
		}
		for _, check := range row.Checks {
			values = append(values, yesNo(check.Exceeds))
		}

		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, headerRow+1+rowIdx)
			if err := f.SetCellValue(samplesSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
			f.SetCellStyle(samplesSheet, cell, cell, dataStyle)
		}
	}

	summaryRow := headerRow + len(r.Rows) + 2
	for i, kv := range summaryPairs(r) {
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow+i)
		f.SetCellValue(samplesSheet, keyCell, kv[0])
		f.SetCellValue(samplesSheet, valueCell, kv[1])
	}

	if err := writeComplianceSheet(f, r, headerStyle, dataStyle); err != nil {
		return nil, err
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeComplianceSheet(f *excelize.File, r *report.Report, headerStyle, dataStyle int) error {
	if _, err := f.NewSheet(complianceSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := []string{"Standard", "Metal", "Samples", "Violations", "Compliance Rate (%)"}
	for colIdx, label := range header {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(complianceSheet, cell, label)
		f.SetCellStyle(complianceSheet, cell, cell, headerStyle)
	}
	f.SetColWidth(complianceSheet, "A", "E", 20)

	rowIdx := 2
	for _, name := range r.Standards {
		for _, metal := range orderedMetals(r.Compliance[name]) {
			c := r.Compliance[name][metal]
			values := []interface{}{name, string(metal), c.Total, c.Violations, c.Rate}
			for colIdx, value := range values {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				f.SetCellValue(complianceSheet, cell, value)
				f.SetCellStyle(complianceSheet, cell, cell, dataStyle)
			}
			rowIdx++
		}
	}
	return nil
}

func borders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
}

// summaryPairs lists the headline figures shown under every export
func summaryPairs(r *report.Report) [][2]string {
	pairs := [][2]string{
		{"Total Samples", fmt.Sprint(r.Summary.Count)},
		{"Average HMPI", formatIndex(r.Summary.AverageIndex)},
		{"High Risk Samples", fmt.Sprint(r.Summary.HighRiskCount)},
		{"High Risk Share", formatPercent(r.HighRiskShare())},
	}
	if r.Project == nil {
		pairs = append(pairs, [2]string{"Projects", fmt.Sprint(r.ProjectCount)})
	}
	return pairs
}
