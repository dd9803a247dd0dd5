// Package ingest reads brokerage export files (CSV or JSON) into the
// canonical types. It only extracts raw records; all field-name and
// value cleanup is delegated to the folio normalizer, so both formats
// tolerate the same source quirks.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hmehl/folio"
)

// Positions reads a positions export, dispatching on the file extension.
func Positions(path string) ([]folio.Position, error) {
	rows, err := records(path)
	if err != nil {
		return nil, err
	}
	return folio.NormalizePositions(rows), nil
}

// Transactions reads a transaction history export, dispatching on the
// file extension.
func Transactions(path string) ([]folio.Transaction, error) {
	rows, err := records(path)
	if err != nil {
		return nil, err
	}
	return folio.NormalizeTransactions(rows), nil
}

// Snapshot reads a positions export and wraps it as a dated snapshot.
// The snapshot date is not in the rows of most exports, so the caller
// supplies it (usually from the filename or the download date).
func Snapshot(path, account string, on folio.Date) (folio.Snapshot, error) {
	positions, err := Positions(path)
	if err != nil {
		return folio.Snapshot{}, err
	}
	if len(positions) == 0 {
		return folio.Snapshot{}, fmt.Errorf("no usable positions in %q", path)
	}
	s := folio.NewSnapshot(account, on, positions)
	s.SourceFile = filepath.Base(path)
	return s, nil
}

// records opens the file and extracts raw rows by format.
func records(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open export file %q: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return CSVRecords(f)
	case ".json":
		return JSONRecords(f, "")
	default:
		return nil, fmt.Errorf("unsupported export format %q (want .csv or .json)", ext)
	}
}
