package folio

import (
	"fmt"
	"slices"
)

// LotStatus is the lifecycle state of a lot. It derives deterministically
// from the remaining quantity and only ever moves forward: a closed lot
// is never reopened, a corrective re-acquisition creates a new lot.
type LotStatus string

const (
	LotOpen    LotStatus = "OPEN"
	LotPartial LotStatus = "PARTIAL"
	LotClosed  LotStatus = "CLOSED"
)

// LotAdjustment records a corporate action applied to a lot, currently
// only splits.
type LotAdjustment struct {
	Date        Date   `json:"date"`
	Numerator   int64  `json:"numerator"`
	Denominator int64  `json:"denominator"`
	Description string `json:"description"`
}

// SaleAllocation records the part of a sale consumed from one lot, with
// the proportional cost basis and the realized gain locked in by it.
type SaleAllocation struct {
	LotID     string   `json:"lotId"`
	Date      Date     `json:"date"`
	Quantity  Quantity `json:"quantity"`
	CostBasis Money    `json:"costBasis"`
	Proceeds  Money    `json:"proceeds"`
	Gain      Money    `json:"gain"`
}

// Lot is a discrete acquisition of a security, tracked for cost basis.
// A lot belongs to exactly one security of one account and is never
// shared.
type Lot struct {
	ID        string     `json:"id"`
	Security  SecurityID `json:"securityId"`
	Account   string     `json:"account"`
	Symbol    string     `json:"symbol"`
	Quantity  Quantity   `json:"quantity"`  // original share count, split-adjusted
	Remaining Quantity   `json:"remaining"` // monotonically non-increasing
	Acquired  Date       `json:"acquired"`
	CostBasis Money      `json:"costBasis"`
	Price     Money      `json:"price"` // cost basis per share, split-adjusted
	Status    LotStatus  `json:"status"`

	Adjustments []LotAdjustment  `json:"adjustments,omitempty"`
	Sales       []SaleAllocation `json:"sales,omitempty"`
}

// deriveStatus recomputes the status from remaining vs original quantity.
func (l *Lot) deriveStatus(tolerance float64) {
	switch {
	case l.Remaining.Within(Q(0), tolerance):
		l.Status = LotClosed
	case l.Remaining.Within(l.Quantity, tolerance):
		l.Status = LotOpen
	default:
		l.Status = LotPartial
	}
}

// check validates the lot's internal invariants.
func (l *Lot) check() error {
	if l.Remaining.IsNegative() {
		return fmt.Errorf("lot %s: remaining quantity %s is negative", l.ID, l.Remaining)
	}
	if l.Remaining.GreaterThan(l.Quantity) {
		return fmt.Errorf("lot %s: remaining quantity %s exceeds original %s", l.ID, l.Remaining, l.Quantity)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (l Lot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", l.ID)
	w.Append("securityId", l.Security)
	w.Append("account", l.Account)
	w.Append("symbol", l.Symbol)
	w.Append("quantity", l.Quantity)
	w.Append("remaining", l.Remaining)
	w.Append("acquired", l.Acquired)
	w.Append("costBasis", l.CostBasis)
	w.Append("price", l.Price)
	w.Append("status", l.Status)
	w.Optional("adjustments", l.Adjustments)
	w.Optional("sales", l.Sales)
	return w.MarshalJSON()
}

// Sale describes the disposition a LotBook consumes lots against.
type Sale struct {
	Date     Date
	Quantity Quantity
	Price    Money // proceeds per share
	Memo     string
}

// SaleResult is the outcome of consuming a sale across lots.
type SaleResult struct {
	Allocations []SaleAllocation
	// Unfilled is the part of the sale the lot book could not cover.
	// A non-zero value is a data-consistency gap for the discrepancy
	// detector, not an engine failure.
	Unfilled  Quantity
	CostBasis Money
	Proceeds  Money
	Gain      Money
}

// LotBook holds the open and closed lots of every security, keyed by
// SecurityID. It is not safe for concurrent mutation; callers serialize
// per account.
type LotBook struct {
	cfg  Config
	lots map[SecurityID][]*Lot
	seq  int // lot ID sequence
}

// NewLotBook creates an empty book with the given configuration.
func NewLotBook(cfg Config) *LotBook {
	return &LotBook{cfg: cfg.normalized(), lots: make(map[SecurityID][]*Lot)}
}

// CreateLot records a discrete acquisition and returns the new OPEN lot.
// The quantity must be strictly positive: zero and negative quantity
// source positions are skipped upstream, and a zero quantity here would
// make the per-share price undefined.
func (b *LotBook) CreateLot(account, symbol string, quantity Quantity, acquired Date, costBasis Money) (*Lot, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("lot quantity must be positive, got %s for %s", quantity, symbol)
	}
	symbol = NormalizeSymbol(symbol)
	id := NewSecurityID(account, symbol)
	b.seq++
	l := &Lot{
		ID:        fmt.Sprintf("%s#%d", id, b.seq),
		Security:  id,
		Account:   account,
		Symbol:    symbol,
		Quantity:  quantity,
		Remaining: quantity,
		Acquired:  acquired,
		CostBasis: costBasis,
		Price:     costBasis.Div(quantity),
		Status:    LotOpen,
	}
	b.lots[id] = append(b.lots[id], l)
	return l, nil
}

// Restore puts previously persisted lots back into the book, keeping the
// ID sequence ahead of them.
func (b *LotBook) Restore(lots ...*Lot) {
	for _, l := range lots {
		b.lots[l.Security] = append(b.lots[l.Security], l)
		b.seq++
	}
}

// Lots returns the lots of a security ordered by acquisition date.
func (b *LotBook) Lots(id SecurityID) []*Lot {
	out := slices.Clone(b.lots[id])
	slices.SortStableFunc(out, func(a, c *Lot) int {
		return a.Acquired.Compare(c.Acquired)
	})
	return out
}

// AllLots returns every lot in the book, grouped by security in key order.
func (b *LotBook) AllLots() []*Lot {
	ids := make([]SecurityID, 0, len(b.lots))
	for id := range b.lots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var out []*Lot
	for _, id := range ids {
		out = append(out, b.Lots(id)...)
	}
	return out
}

// PurgeAccount removes every lot belonging to the account.
func (b *LotBook) PurgeAccount(account string) {
	for id := range b.lots {
		if id.Account() == account {
			delete(b.lots, id)
		}
	}
}

// openLots returns the consumable (OPEN or PARTIAL) lots of a security
// ordered according to the method. For Specific, the caller supplies the
// lot IDs in consumption order; IDs that are unknown or closed are
// skipped.
func (b *LotBook) openLots(id SecurityID, method LotMethod, specific []string) []*Lot {
	var open []*Lot
	for _, l := range b.Lots(id) {
		if l.Status != LotClosed {
			open = append(open, l)
		}
	}
	switch method {
	case FIFO:
		// Lots(id) is already ascending by acquisition date.
	case LIFO:
		slices.Reverse(open)
	case Specific:
		byID := make(map[string]*Lot, len(open))
		for _, l := range open {
			byID[l.ID] = l
		}
		ordered := make([]*Lot, 0, len(specific))
		for _, lotID := range specific {
			if l, ok := byID[lotID]; ok {
				ordered = append(ordered, l)
			}
		}
		open = ordered
	}
	return open
}

// ConsumeSale applies a sale to the security's lots, consuming greedily
// from the front of the method-ordered candidates. Each touched lot
// records a SaleAllocation with its proportional cost basis and realized
// gain. If the candidates are exhausted before the sale is covered, the
// remainder is reported in the result; remaining quantities never go
// negative.
func (b *LotBook) ConsumeSale(id SecurityID, sale Sale, method LotMethod, specific ...string) (SaleResult, error) {
	if !sale.Quantity.IsPositive() {
		return SaleResult{}, fmt.Errorf("sale quantity must be positive, got %s for %s", sale.Quantity, id)
	}

	result := SaleResult{Unfilled: sale.Quantity}
	toSell := sale.Quantity

	for _, l := range b.openLots(id, method, specific) {
		if toSell.IsZero() {
			break
		}
		shares := l.Remaining.Min(toSell)

		costOfShares := l.CostBasis.Div(l.Quantity).Mul(shares)
		proceeds := sale.Price.Mul(shares)
		alloc := SaleAllocation{
			LotID:     l.ID,
			Date:      sale.Date,
			Quantity:  shares,
			CostBasis: costOfShares,
			Proceeds:  proceeds,
			Gain:      proceeds.Sub(costOfShares),
		}

		l.Remaining = l.Remaining.Sub(shares)
		l.Sales = append(l.Sales, alloc)
		l.deriveStatus(b.cfg.QuantityTolerance)
		if err := l.check(); err != nil {
			return SaleResult{}, err
		}

		result.Allocations = append(result.Allocations, alloc)
		result.CostBasis = result.CostBasis.Add(alloc.CostBasis)
		result.Proceeds = result.Proceeds.Add(alloc.Proceeds)
		result.Gain = result.Gain.Add(alloc.Gain)
		toSell = toSell.Sub(shares)
	}

	result.Unfilled = toSell
	return result, nil
}

// ApplySplit adjusts every lot of the security for a split expressed as
// numerator:denominator (2:1 doubles the share count). The pass is a
// single conceptual unit: all lots are validated and the new values
// computed before any lot is touched, so a caller never observes a
// partially split security.
func (b *LotBook) ApplySplit(id SecurityID, numerator, denominator int64, on Date) error {
	if numerator <= 0 || denominator <= 0 {
		return fmt.Errorf("invalid split ratio %d:%d for %s", numerator, denominator, id)
	}
	num, den := Q(numerator), Q(denominator)

	label := fmt.Sprintf("%d:%d split", numerator, denominator)
	if numerator < denominator {
		label = fmt.Sprintf("%d:%d reverse split", numerator, denominator)
	}
	adj := LotAdjustment{Date: on, Numerator: numerator, Denominator: denominator, Description: label}

	// Stage every adjusted lot first.
	type staged struct {
		lot       *Lot
		quantity  Quantity
		remaining Quantity
		price     Money
	}
	lots := b.lots[id]
	stagedLots := make([]staged, 0, len(lots))
	for _, l := range lots {
		s := staged{
			lot:       l,
			quantity:  l.Quantity.Mul(num).Div(den),
			remaining: l.Remaining.Mul(num).Div(den),
			price:     l.Price.Mul(den).Div(num),
		}
		if s.remaining.IsNegative() || s.remaining.GreaterThan(s.quantity) {
			return fmt.Errorf("split %s would corrupt lot %s", label, l.ID)
		}
		stagedLots = append(stagedLots, s)
	}

	// Commit in one pass.
	for _, s := range stagedLots {
		s.lot.Quantity = s.quantity
		s.lot.Remaining = s.remaining
		s.lot.Price = s.price
		s.lot.Adjustments = append(s.lot.Adjustments, adj)
		s.lot.deriveStatus(b.cfg.QuantityTolerance)
	}
	return nil
}

// TotalRemaining sums the remaining quantity across all lots of a
// security. The conservation invariant says this always equals total
// acquired minus total sold (within tolerance).
func (b *LotBook) TotalRemaining(id SecurityID) Quantity {
	var total Quantity
	for _, l := range b.lots[id] {
		total = total.Add(l.Remaining)
	}
	return total
}

// RemainingCostBasis sums the cost basis still tied up in unsold shares
// of a security.
func (b *LotBook) RemainingCostBasis(id SecurityID) Money {
	var total Money
	for _, l := range b.lots[id] {
		if l.Quantity.IsZero() {
			continue
		}
		total = total.Add(l.CostBasis.Div(l.Quantity).Mul(l.Remaining))
	}
	return total
}
