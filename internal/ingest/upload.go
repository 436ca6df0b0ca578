package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidTemplate is returned when an upload's header does not match
// the template
var ErrInvalidTemplate = errors.New("invalid file format, please use the provided template")

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Parse dispatches on the file extension
func Parse(filename string, r io.Reader) ([]*Input, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads template rows from a CSV upload
func ParseCSV(r io.Reader) ([]*Input, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRecords(records)
}

// ParseXLSX reads template rows from the first sheet of an XLSX upload
func ParseXLSX(r io.Reader) ([]*Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidTemplate
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) ([]*Input, error) {
	if len(records) == 0 || !headerMatches(records[0]) {
		return nil, ErrInvalidTemplate
	}

	var inputs []*Input
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		inputs = append(inputs, fromRecord(i+1, record))
	}
	return inputs, nil
}

func headerMatches(header []string) bool {
	// Spreadsheet tools often leave trailing empty header cells
	for len(header) > len(Columns) && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	if len(header) != len(Columns) {
		return false
	}
	for i, col := range Columns {
		name := strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		if !strings.EqualFold(name, col) {
			return false
		}
	}
	return true
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// templateExample is the sample row shipped in the template
var templateExample = []string{"WS001", "<project-uuid>", "28.6139", "77.2090", "Lead", "0.05", "0.01", "0.7", "2024-01-15"}

// TemplateCSV renders the upload template as CSV
func TemplateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	if err := w.Write(templateExample); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}

// TemplateXLSX renders the upload template as a workbook
func TemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Samples"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for rowIdx, row := range [][]string{Columns, templateExample} {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
