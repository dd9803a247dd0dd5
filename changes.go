package folio

import (
	"fmt"
	"slices"
)

// ChangeKind classifies what happened to one symbol between two snapshots.
type ChangeKind string

const (
	ChangeSold             ChangeKind = "SOLD"
	ChangeAcquired         ChangeKind = "ACQUIRED"
	ChangeQuantityIncrease ChangeKind = "QUANTITY_INCREASE"
	ChangeQuantityDecrease ChangeKind = "QUANTITY_DECREASE"
	ChangeUnchanged        ChangeKind = "UNCHANGED"
)

// PositionChange is the per-symbol outcome of comparing two snapshots.
type PositionChange struct {
	Symbol      string     `json:"symbol"`
	Kind        ChangeKind `json:"kind"`
	OldQuantity Quantity   `json:"oldQuantity"`
	NewQuantity Quantity   `json:"newQuantity"`
	Delta       Quantity   `json:"delta"` // NewQuantity - OldQuantity
	Price       Money      `json:"price"` // newer price when held, else older
}

// TickerChange is an inferred symbol rename: a sold position and an
// acquired position with matching quantities. This is a heuristic; when
// the match is not one-to-one in either direction the pairing is not
// committed and the candidates are reported instead.
type TickerChange struct {
	OldSymbol  string   `json:"oldSymbol"`
	NewSymbol  string   `json:"newSymbol"`
	Quantity   Quantity `json:"quantity"`
	Ambiguous  bool     `json:"ambiguous,omitempty"`
	Candidates []string `json:"candidates,omitempty"` // symbols on the ambiguous side
}

// ChangeSet is the full classification of one snapshot pair. Every symbol
// present in either snapshot lands in exactly one of the four lists
// before ticker-change pairing removes committed legs from Removed and
// Added.
type ChangeSet struct {
	Account string `json:"account"`
	From    Date   `json:"from"`
	To      Date   `json:"to"`

	Removed         []PositionChange `json:"removed"`
	Added           []PositionChange `json:"added"`
	QuantityChanges []PositionChange `json:"quantityChanges"`
	Unchanged       []PositionChange `json:"unchanged"`
	TickerChanges   []TickerChange   `json:"tickerChanges"`
}

// Changes returns every committed change (removed, added, quantity) in
// one list, for detectors that do not care about the grouping.
func (c *ChangeSet) Changes() []PositionChange {
	out := make([]PositionChange, 0, len(c.Removed)+len(c.Added)+len(c.QuantityChanges))
	out = append(out, c.Removed...)
	out = append(out, c.Added...)
	out = append(out, c.QuantityChanges...)
	return out
}

// Compare diffs two snapshots of the same account. The caller is
// responsible for the order: older must be strictly before newer (by
// snapshot date); Compare does not re-sort.
func Compare(older, newer Snapshot, cfg Config) (*ChangeSet, error) {
	cfg = cfg.normalized()
	if older.Account != newer.Account {
		return nil, fmt.Errorf("cannot compare snapshots of different accounts %q and %q", older.Account, newer.Account)
	}
	if !older.Date.Before(newer.Date) {
		return nil, fmt.Errorf("snapshot on %s is not older than snapshot on %s", older.Date, newer.Date)
	}

	oldPos := older.bySymbol()
	newPos := newer.bySymbol()

	cs := &ChangeSet{Account: older.Account, From: older.Date, To: newer.Date}

	// Visit the union of symbols in lexical order so the result, and the
	// pairing below, is deterministic.
	union := make(map[string]struct{}, len(oldPos)+len(newPos))
	for sym := range oldPos {
		union[sym] = struct{}{}
	}
	for sym := range newPos {
		union[sym] = struct{}{}
	}
	symbols := make([]string, 0, len(union))
	for sym := range union {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)

	for _, sym := range symbols {
		op, inOld := oldPos[sym]
		np, inNew := newPos[sym]
		switch {
		case inOld && !inNew:
			cs.Removed = append(cs.Removed, PositionChange{
				Symbol: sym, Kind: ChangeSold,
				OldQuantity: op.Quantity, Delta: op.Quantity.Neg(), Price: op.Price,
			})
		case !inOld && inNew:
			cs.Added = append(cs.Added, PositionChange{
				Symbol: sym, Kind: ChangeAcquired,
				NewQuantity: np.Quantity, Delta: np.Quantity, Price: np.Price,
			})
		default:
			delta := np.Quantity.Sub(op.Quantity)
			change := PositionChange{
				Symbol: sym, Kind: ChangeUnchanged,
				OldQuantity: op.Quantity, NewQuantity: np.Quantity,
				Delta: delta, Price: np.Price,
			}
			if !np.Quantity.Within(op.Quantity, cfg.QuantityTolerance) {
				if delta.IsPositive() {
					change.Kind = ChangeQuantityIncrease
				} else {
					change.Kind = ChangeQuantityDecrease
				}
				cs.QuantityChanges = append(cs.QuantityChanges, change)
			} else {
				cs.Unchanged = append(cs.Unchanged, change)
			}
		}
	}

	cs.inferTickerChanges(cfg.QuantityTolerance)
	return cs, nil
}

// inferTickerChanges pairs sold and acquired positions with matching
// quantities. A pair is committed (both legs removed) only when the match
// is unambiguous in both directions: exactly one sold position for the
// acquired quantity, and that sold position claimed by exactly one
// acquisition. Every other coincidence keeps all legs and reports the
// candidates instead of guessing.
func (cs *ChangeSet) inferTickerChanges(tolerance float64) {
	matchesOf := func(added PositionChange) []PositionChange {
		var out []PositionChange
		for _, sold := range cs.Removed {
			if sold.OldQuantity.Within(added.NewQuantity, tolerance) {
				out = append(out, sold)
			}
		}
		return out
	}

	// Acquired symbols claiming each sold position, in lexical order.
	claimants := make(map[string][]string, len(cs.Removed))
	for _, added := range cs.Added {
		for _, sold := range matchesOf(added) {
			claimants[sold.Symbol] = append(claimants[sold.Symbol], added.Symbol)
		}
	}

	var committed []TickerChange
	reported := make(map[string]bool, len(cs.Removed))
	for _, added := range cs.Added {
		matches := matchesOf(added)
		switch len(matches) {
		case 0:
			// plain acquisition
		case 1:
			sold := matches[0]
			if len(claimants[sold.Symbol]) > 1 {
				// One disappearance, several equal-quantity appearances.
				if !reported[sold.Symbol] {
					reported[sold.Symbol] = true
					cs.TickerChanges = append(cs.TickerChanges, TickerChange{
						OldSymbol:  sold.Symbol,
						Quantity:   sold.OldQuantity,
						Ambiguous:  true,
						Candidates: claimants[sold.Symbol],
					})
				}
				continue
			}
			committed = append(committed, TickerChange{
				OldSymbol: sold.Symbol,
				NewSymbol: added.Symbol,
				Quantity:  added.NewQuantity,
			})
		default:
			// Several disappearances for one appearance.
			candidates := make([]string, 0, len(matches))
			for _, m := range matches {
				candidates = append(candidates, m.Symbol)
			}
			cs.TickerChanges = append(cs.TickerChanges, TickerChange{
				NewSymbol:  added.Symbol,
				Quantity:   added.NewQuantity,
				Ambiguous:  true,
				Candidates: candidates,
			})
		}
	}

	if len(committed) == 0 {
		return
	}
	cs.TickerChanges = append(cs.TickerChanges, committed...)

	// Remove committed legs from the sold and acquired lists.
	oldSymbols := make(map[string]bool, len(committed))
	newSymbols := make(map[string]bool, len(committed))
	for _, tc := range committed {
		oldSymbols[tc.OldSymbol] = true
		newSymbols[tc.NewSymbol] = true
	}
	cs.Removed = slices.DeleteFunc(cs.Removed, func(pc PositionChange) bool {
		return oldSymbols[pc.Symbol]
	})
	cs.Added = slices.DeleteFunc(cs.Added, func(pc PositionChange) bool {
		return newSymbols[pc.Symbol]
	})
}
