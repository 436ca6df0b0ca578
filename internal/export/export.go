// Package export renders reports as CSV, XLSX and PDF documents and sample
// locations as GeoJSON. Renderers only format values already computed by
// the report package.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/report"
)

// Format is a downloadable report format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, xlsx and pdf, case-insensitively. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Render encodes r in format f
func Render(f Format, r *report.Report) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(r)
	case FormatXLSX:
		return XLSX(r)
	case FormatPDF:
		return PDF(r)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Filename is the download name for a report, e.g.
// AquaSure_Report_all_2024-03-01.csv
func Filename(r *report.Report, f Format) string {
	scope := "all"
	if r.Project != nil {
		scope = r.Project.ID.String()
	}
	return fmt.Sprintf("AquaSure_Report_%s_%s.%s", scope, r.GeneratedAt.Format(report.DateLayout), f)
}

// Record flattens a row into the export column order
func Record(row report.Row) []string {
	record := []string{
		row.SampleID,
		row.Project,
		row.Location,
		string(row.Metal),
		formatNumber(row.Concentration),
		formatIndex(row.HMPI),
		string(row.RiskLevel),
		row.Date,
	}
	for _, check := range row.Checks {
		record = append(record, formatLimit(check.Limit))
	}
	for _, check := range row.Checks {
		record = append(record, yesNo(check.Exceeds))
	}
	return record
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatIndex(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func formatLimit(limit *float64) string {
	if limit == nil {
		return "N/A"
	}
	return formatNumber(*limit)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// orderedMetals lists the known metals in display order, then any other
// metals present by name
func orderedMetals(m map[hmpi.Metal]report.Compliance) []hmpi.Metal {
	var out, extra []hmpi.Metal
	for _, metal := range hmpi.Metals {
		if _, ok := m[metal]; ok {
			out = append(out, metal)
		}
	}
	for metal := range m {
		if !metal.Known() {
			extra = append(extra, metal)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
