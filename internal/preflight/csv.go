package preflight

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor renders each data row as "header: value" pairs.
type CSVExtractor struct{}

func (CSVExtractor) Extract(r io.Reader, _ string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var b strings.Builder
	for _, row := range records[1:] {
		for j, cell := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			if j < len(headers) {
				b.WriteString(headers[j] + ": ")
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	if len(records) == 1 {
		return strings.Join(headers, ", "), nil
	}
	return strings.TrimSpace(b.String()), nil
}
