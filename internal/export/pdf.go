package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/report"
)

// pdfColumns are the sample table columns and their widths in mm on a
// landscape A4 page
var pdfColumns = []struct {
	label string
	width float64
}{
	{"Sample ID", 28},
	{"Project", 48},
	{"Location", 44},
	{"Metal", 24},
	{"Conc. (mg/L)", 26},
	{"HMPI", 22},
	{"Risk Level", 32},
	{"Date", 24},
}

// PDF renders the report headline, compliance per standard and the sample
// table
func PDF(r *report.Report) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("AquaSure", true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "AquaSure Water Quality Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if r.Project != nil {
		pdf.CellFormat(0, 7, tr("Project: "+r.Project.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr("Location: "+r.Project.Location()), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 7, "Comprehensive Report - All Projects", "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, "Generated on: "+r.GeneratedAt.Format(report.DateLayout), "", 1, "L", false, 0, "")
	for _, kv := range summaryPairs(r) {
		pdf.CellFormat(0, 7, kv[0]+": "+kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	writeCompliance(pdf, r)
	writeSampleTable(pdf, r, tr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCompliance(pdf *fpdf.Fpdf, r *report.Report) {
	if len(r.Standards) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Compliance", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(31, 78, 120)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(30, 7, "Metal", "1", 0, "C", true, 0, "")
	for _, name := range r.Standards {
		pdf.CellFormat(40, 7, name+" compliance", "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, metal := range complianceMetals(r) {
		pdf.CellFormat(30, 6, string(metal), "1", 0, "L", false, 0, "")
		for _, name := range r.Standards {
			text := "-"
			if c, ok := r.Compliance[name][metal]; ok && c.Total > 0 {
				text = fmt.Sprintf("%s (%d/%d)", formatPercent(c.Rate), c.Total-c.Violations, c.Total)
			}
			pdf.CellFormat(40, 6, text, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

// complianceMetals lists metals that were sampled, in display order
func complianceMetals(r *report.Report) []hmpi.Metal {
	seen := make(map[hmpi.Metal]report.Compliance)
	for _, name := range r.Standards {
		for metal, c := range r.Compliance[name] {
			if c.Total > 0 {
				seen[metal] = c
			}
		}
	}
	return orderedMetals(seen)
}

func writeSampleTable(pdf *fpdf.Fpdf, r *report.Report, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Samples", "", 1, "L", false, 0, "")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(31, 78, 120)
		pdf.SetTextColor(255, 255, 255)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.label, "1", 0, "C", true, 0, "")
		}
		for _, name := range r.Standards {
			pdf.CellFormat(14, 7, ">"+name, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range r.Rows {
		if pdf.GetY()+6 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}

		cells := []string{
			row.SampleID,
			row.Project,
			row.Location,
			string(row.Metal),
			formatNumber(row.Concentration),
			formatIndex(row.HMPI),
			string(row.RiskLevel),
			row.Date,
		}
		for i, text := range cells {
			col := pdfColumns[i]
			fill := false
			if col.label == "Risk Level" {
				red, green, blue := hexColor(row.RiskLevel.Color())
				pdf.SetFillColor(red, green, blue)
				pdf.SetTextColor(255, 255, 255)
				fill = true
			}
			pdf.CellFormat(col.width, 6, fit(pdf, tr(text), col.width), "1", 0, "L", fill, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		for _, check := range row.Checks {
			pdf.CellFormat(14, 6, yesNo(check.Exceeds), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates text to the cell width
func fit(pdf *fpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > limit {
		text = text[:len(text)-1]
	}
	return text + "..."
}

// hexColor parses #RRGGBB, returning grey for anything else
func hexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		return 102, 102, 102
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
