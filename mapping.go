package folio

import (
	"fmt"
	"slices"
)

// MappingAction describes why a symbol changed identity.
type MappingAction string

const (
	ActionRename MappingAction = "rename"
	ActionMerger MappingAction = "merger"
	ActionSplit  MappingAction = "spinoff"
)

// SymbolMapping is a directed edge in the symbol identity graph: on and
// after Effective, OldSymbol trades as NewSymbol.
type SymbolMapping struct {
	OldSymbol string        `json:"oldSymbol"`
	NewSymbol string        `json:"newSymbol"`
	Effective Date          `json:"effective"`
	Action    MappingAction `json:"action,omitempty"`
	Memo      string        `json:"memo,omitempty"`
}

func (m SymbolMapping) String() string {
	return fmt.Sprintf("%s→%s on %s", m.OldSymbol, m.NewSymbol, m.Effective)
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (m SymbolMapping) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("oldSymbol", m.OldSymbol)
	w.Append("newSymbol", m.NewSymbol)
	w.Append("effective", m.Effective)
	w.Optional("action", m.Action)
	w.Optional("memo", m.Memo)
	return w.MarshalJSON()
}

// MappingSet holds all known symbol mappings, indexed by old symbol.
type MappingSet struct {
	byOld map[string][]SymbolMapping
}

// NewMappingSet builds a set from mapping records. Symbols are normalized
// on the way in; per-symbol edges are kept ordered by effective date.
func NewMappingSet(mappings ...SymbolMapping) *MappingSet {
	s := &MappingSet{byOld: make(map[string][]SymbolMapping)}
	s.Add(mappings...)
	return s
}

// Add inserts mappings, maintaining per-symbol date order.
func (s *MappingSet) Add(mappings ...SymbolMapping) {
	for _, m := range mappings {
		m.OldSymbol = NormalizeSymbol(m.OldSymbol)
		m.NewSymbol = NormalizeSymbol(m.NewSymbol)
		s.byOld[m.OldSymbol] = append(s.byOld[m.OldSymbol], m)
	}
	for old := range s.byOld {
		slices.SortStableFunc(s.byOld[old], func(a, b SymbolMapping) int {
			return a.Effective.Compare(b.Effective)
		})
	}
}

// All returns every mapping, ordered by old symbol then effective date.
func (s *MappingSet) All() []SymbolMapping {
	olds := make([]string, 0, len(s.byOld))
	for old := range s.byOld {
		olds = append(olds, old)
	}
	slices.Sort(olds)
	var out []SymbolMapping
	for _, old := range olds {
		out = append(out, s.byOld[old]...)
	}
	return out
}

// resolveOnce finds the most recent mapping for symbol effective on or
// before asOf, or false when none applies.
func (s *MappingSet) resolveOnce(symbol string, asOf Date) (SymbolMapping, bool) {
	var best SymbolMapping
	var found bool
	for _, m := range s.byOld[symbol] {
		if m.Effective.After(asOf) {
			continue
		}
		// mappings are date-ordered, the last applicable one wins.
		best, found = m, true
	}
	return best, found
}

// ResolveCurrent returns the identity symbol traded under as of the given
// date after a single mapping step, or the input unchanged when no
// mapping applies.
func (s *MappingSet) ResolveCurrent(symbol string, asOf Date) string {
	symbol = NormalizeSymbol(symbol)
	if m, ok := s.resolveOnce(symbol, asOf); ok {
		return m.NewSymbol
	}
	return symbol
}

// ResolveChain follows mappings forward from symbol until no further
// mapping applies, returning the ordered chain of traversed records.
// A repeated symbol stops the walk (visited-set cycle guard), so a cyclic
// mapping set terminates with the partial chain rather than looping.
func (s *MappingSet) ResolveChain(symbol string, asOf Date) []SymbolMapping {
	symbol = NormalizeSymbol(symbol)
	visited := map[string]struct{}{symbol: {}}

	var chain []SymbolMapping
	for {
		m, ok := s.resolveOnce(symbol, asOf)
		if !ok {
			return chain
		}
		chain = append(chain, m)
		if _, seen := visited[m.NewSymbol]; seen {
			return chain
		}
		visited[m.NewSymbol] = struct{}{}
		symbol = m.NewSymbol
	}
}

// Terminal returns the final identity of a symbol as of a date: the new
// symbol of the last chain record, or the input when no mapping applies.
func (s *MappingSet) Terminal(symbol string, asOf Date) string {
	chain := s.ResolveChain(symbol, asOf)
	if len(chain) == 0 {
		return NormalizeSymbol(symbol)
	}
	return chain[len(chain)-1].NewSymbol
}
