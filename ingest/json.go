package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// rowPaths are the JSONPath expressions tried in order when the caller
// gives none, covering the row-array shapes seen in broker JSON exports.
var rowPaths = []string{
	"$[*]",
	"$.positions[*]",
	"$.holdings[*]",
	"$.transactions[*]",
	"$.activity[*]",
	"$.data[*]",
	"$.results[*]",
}

// JSONRecords reads a broker JSON export into raw records. The path
// selects the row array; an empty path tries the common shapes in turn
// and keeps the first that yields object rows.
func JSONRecords(r io.Reader, path string) ([]map[string]any, error) {
	var jobj any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not parse JSON export: %w", err)
	}

	paths := rowPaths
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		jval, err := jsonpath.Get(p, jobj)
		if err != nil {
			continue
		}
		rows, ok := objectRows(jval)
		if !ok {
			continue
		}
		return rows, nil
	}
	if path != "" {
		return nil, fmt.Errorf("path %q selects no object rows", path)
	}
	return nil, fmt.Errorf("could not locate the row array in the JSON export")
}

// objectRows coerces a jsonpath result into object records, converting
// json.Number cells to float64 so downstream coercion sees plain values.
func objectRows(jval any) ([]map[string]any, bool) {
	jlist, ok := jval.([]any)
	if !ok || len(jlist) == 0 {
		return nil, false
	}
	rows := make([]map[string]any, 0, len(jlist))
	for _, item := range jlist {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		row := make(map[string]any, len(obj))
		for k, v := range obj {
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					v = f
				}
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, true
}
