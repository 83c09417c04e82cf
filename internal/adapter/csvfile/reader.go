package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dmoraes/aportebtc-backend/internal/ingest"
)

// Reader is the byte-level CSV collaborator: it turns an uploaded file
// into the header array and row mappings the ingestion pipeline consumes.
// It knows nothing about field semantics.

// Parse reads a CSV stream and returns its header row plus one RawRow per
// data row. The delimiter is sniffed from the header line because
// Brazilian spreadsheet exports commonly use ';' instead of ','. Ragged
// rows are tolerated; cells beyond the header width are dropped.
func Parse(r io.Reader) ([]string, []ingest.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading upload: %w", err)
	}

	content := strings.TrimPrefix(string(data), "\ufeff") // Excel BOM
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]ingest.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(ingest.RawRow, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// sniffDelimiter picks ';' when the first line carries more semicolons
// than commas.
func sniffDelimiter(content string) rune {
	line := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
