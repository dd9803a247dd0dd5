package folio

import (
	"fmt"
	"slices"
	"strings"
)

// Position is one row of a snapshot: the state of a single holding on the
// snapshot's date. MarketValue ≈ Quantity × Price is expected but never
// enforced here; violations are surfaced by the discrepancy detector.
type Position struct {
	Symbol      string   `json:"symbol"`
	Description string   `json:"description,omitempty"`
	Quantity    Quantity `json:"quantity"`
	Price       Money    `json:"price"`
	MarketValue Money    `json:"marketValue"`
	CostBasis   Money    `json:"costBasis"`
	Gain        Money    `json:"gain"`
	GainPercent Percent  `json:"gainPercent"`
}

// AccountTotal aggregates a snapshot's positions.
type AccountTotal struct {
	MarketValue Money `json:"marketValue"`
	Gain        Money `json:"gain"`
}

// Snapshot is a dated, immutable record of all positions held in one
// account. It is identified by the (Account, Date) pair. Once stored only
// metadata (SourceFile) may be patched.
type Snapshot struct {
	Account    string       `json:"account"`
	Date       Date         `json:"date"`
	Positions  []Position   `json:"positions"`
	Total      AccountTotal `json:"total"`
	SourceFile string       `json:"sourceFile,omitempty"`
}

// NewSnapshot builds a snapshot from positions, computing the account
// total from the rows.
func NewSnapshot(account string, on Date, positions []Position) Snapshot {
	s := Snapshot{Account: account, Date: on, Positions: positions}
	for _, p := range positions {
		s.Total.MarketValue = s.Total.MarketValue.Add(p.MarketValue)
		s.Total.Gain = s.Total.Gain.Add(p.Gain)
	}
	return s
}

// Position returns the row for a symbol, or false when the snapshot does
// not hold it.
func (s Snapshot) Position(symbol string) (Position, bool) {
	for _, p := range s.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Position{}, false
}

// bySymbol indexes the snapshot's positions by symbol.
func (s Snapshot) bySymbol() map[string]Position {
	m := make(map[string]Position, len(s.Positions))
	for _, p := range s.Positions {
		m[p.Symbol] = p
	}
	return m
}

// Symbols returns the snapshot's symbols in lexical order.
func (s Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Positions))
	for _, p := range s.Positions {
		symbols = append(symbols, p.Symbol)
	}
	slices.Sort(symbols)
	return symbols
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%s@%s (%d positions)", s.Account, s.Date, len(s.Positions))
}

// SecurityID identifies a security within one account; lots are keyed by it.
type SecurityID string

// NewSecurityID builds the account+symbol composite key.
func NewSecurityID(account, symbol string) SecurityID {
	return SecurityID(account + "/" + symbol)
}

// Account returns the account part of the composite key.
func (id SecurityID) Account() string {
	if i := strings.LastIndex(string(id), "/"); i >= 0 {
		return string(id)[:i]
	}
	return ""
}

// Symbol returns the symbol part of the composite key.
func (id SecurityID) Symbol() string {
	if i := strings.LastIndex(string(id), "/"); i >= 0 {
		return string(id)[i+1:]
	}
	return string(id)
}

// SortSnapshots orders snapshots chronologically in place. Two snapshots
// of one account are comparable only after this ordering.
func SortSnapshots(snapshots []Snapshot) {
	slices.SortStableFunc(snapshots, func(a, b Snapshot) int {
		return a.Date.Compare(b.Date)
	})
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", s.Account)
	w.Append("date", s.Date)
	w.Append("positions", s.Positions)
	w.Append("total", s.Total)
	w.Optional("sourceFile", s.SourceFile)
	return w.MarshalJSON()
}
