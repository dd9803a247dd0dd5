package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// recordType discriminates the line kinds of a store file.
type recordType string

const (
	recMapping     recordType = "mapping"
	recSnapshot    recordType = "snapshot"
	recTransaction recordType = "transaction"
	recLot         recordType = "lot"
)

// record wraps a payload with its line discriminator, keeping the
// "record" key first on the line.
type record struct {
	kind    recordType
	payload any
}

func (r record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("record", r.kind)
	w.EmbedFrom(r.payload)
	return w.MarshalJSON()
}

// EncodeStore writes the store as JSONL, one record per line, in a
// stable order: mappings, then snapshots by account and date, then
// transactions by date, then lots by security. Encoding the same store
// twice yields byte-identical output.
func EncodeStore(w io.Writer, s *Store) error {
	bw := bufio.NewWriter(w)

	writeLine := func(kind recordType, payload any) error {
		data, err := json.Marshal(record{kind: kind, payload: payload})
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	}

	for _, m := range s.Mappings().All() {
		if err := writeLine(recMapping, m); err != nil {
			return fmt.Errorf("encoding mapping %s: %w", m.OldSymbol, err)
		}
	}
	for _, account := range s.Accounts() {
		for _, snap := range s.Snapshots(account) {
			if err := writeLine(recSnapshot, snap); err != nil {
				return fmt.Errorf("encoding snapshot %s: %w", snap, err)
			}
		}
	}
	for _, tx := range s.Transactions() {
		if err := writeLine(recTransaction, tx); err != nil {
			return fmt.Errorf("encoding transaction %s: %w", tx, err)
		}
	}
	for _, l := range s.LotBook().AllLots() {
		if err := writeLine(recLot, l); err != nil {
			return fmt.Errorf("encoding lot %s: %w", l.ID, err)
		}
	}
	return bw.Flush()
}

// DecodeStore reads a JSONL store stream. Empty lines are skipped; a
// line with an unknown record kind is an error, not silently dropped.
func DecodeStore(r io.Reader, cfg Config) (*Store, error) {
	s := NewStore(cfg)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var identifier struct {
			Record recordType `json:"record"`
		}
		if err := json.Unmarshal(raw, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record: %w", line, err)
		}

		switch identifier.Record {
		case recMapping:
			var m SymbolMapping
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("line %d: bad mapping: %w", line, err)
			}
			s.AddMapping(m)
		case recSnapshot:
			var snap Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return nil, fmt.Errorf("line %d: bad snapshot: %w", line, err)
			}
			if err := s.AddSnapshot(snap); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		case recTransaction:
			var tx Transaction
			if err := json.Unmarshal(raw, &tx); err != nil {
				return nil, fmt.Errorf("line %d: bad transaction: %w", line, err)
			}
			s.AddTransactions(tx)
		case recLot:
			var l Lot
			if err := json.Unmarshal(raw, &l); err != nil {
				return nil, fmt.Errorf("line %d: bad lot: %w", line, err)
			}
			s.LotBook().Restore(&l)
		default:
			return nil, fmt.Errorf("line %d: unknown record kind %q", line, identifier.Record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return s, nil
}

// LoadStore reads a store file. A missing file yields an empty store,
// so a fresh working directory needs no setup step.
func LoadStore(path string, cfg Config) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewStore(cfg), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open store file %q: %w", path, err)
	}
	defer f.Close()

	s, err := DecodeStore(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not decode store file %q: %w", path, err)
	}
	return s, nil
}

// SaveStore writes the store to path atomically, via a temporary file
// renamed into place.
func SaveStore(path string, s *Store) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeStore(tmp, s); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
