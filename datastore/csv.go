package datastore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads a CSV document into a RawTable. The first record is the
// header. Cell whitespace is trimmed; fully empty trailing lines are skipped.
func ParseCSV(r io.Reader) (RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // raggedness is reported by Ingest, not here

	records, err := reader.ReadAll()
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return RawTable{}, fmt.Errorf("CSV document is empty")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		empty := true
		cells := make([]string, len(rec))
		for i, cell := range rec {
			cells[i] = strings.TrimSpace(cell)
			if cells[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, cells)
	}

	return RawTable{Columns: header, Rows: rows}, nil
}
