package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVRecords reads a broker CSV export into raw records keyed by the
// header row. Broker CSVs are messy: a UTF-8 BOM on the first cell,
// ragged rows, blank separator lines, and trailing disclaimer lines
// with fewer cells than the header. Rows shorter than the header are
// padded; rows with no non-empty cell are dropped.
func CSVRecords(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV export")
	}
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	var rows []map[string]any
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read CSV row: %w", err)
		}

		row := make(map[string]any, len(header))
		empty := true
		for i, name := range header {
			var cell string
			if i < len(cells) {
				cell = strings.TrimSpace(cells[i])
			}
			if cell != "" {
				empty = false
			}
			row[name] = cell
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
