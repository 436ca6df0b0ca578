package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/smukkama/aquasure-server/internal/report"
)

// CSV writes the header line followed by one record per row
func CSV(r *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(r.Columns()); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range r.Rows {
		if err := writer.Write(Record(row)); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", row.SampleID, err)
		}
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}
