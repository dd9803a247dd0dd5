package folio

import (
	"fmt"
	"slices"
)

// DiscrepancyType classifies a detected inconsistency between
// snapshot-observed and transaction-derived state.
type DiscrepancyType string

const (
	QuantityMismatch    DiscrepancyType = "QUANTITY_MISMATCH"
	MissingAcquisitions DiscrepancyType = "MISSING_ACQUISITIONS"
	MissingSales        DiscrepancyType = "MISSING_SALES"
	CostBasisMismatch   DiscrepancyType = "COST_BASIS_MISMATCH"
	DateInconsistency   DiscrepancyType = "DATE_INCONSISTENCY"
	MathematicalError   DiscrepancyType = "MATHEMATICAL_ERROR"
	SymbolChangeNeeded  DiscrepancyType = "SYMBOL_CHANGE_NEEDED"
)

// Severity grades a discrepancy for review priority.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// rank orders severities for sorting, most urgent first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Discrepancy is a detected inconsistency. Discrepancies are ephemeral
// data computed on demand and surfaced for review; they are never
// persisted as authoritative state and never auto-resolved.
type Discrepancy struct {
	Type     DiscrepancyType `json:"type"`
	Severity Severity        `json:"severity"`
	Account  string          `json:"account,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Date     Date            `json:"date,omitempty"`

	// Difference is the signed quantity delta the discrepancy measures
	// (calculated − actual for quantity checks, unexplained remainder for
	// period checks).
	Difference Quantity `json:"difference"`
	Percent    Percent  `json:"percent"`
	// Expected and Actual carry the two sides of an amount check.
	Expected Money `json:"expected"`
	Actual   Money `json:"actual"`
	// Price and MarketValue feed the financial impact estimate.
	Price       Money  `json:"price"`
	MarketValue Money  `json:"marketValue"`
	Description string `json:"description"`
	// Candidates lists old-symbol candidates of an ambiguous ticker change.
	Candidates []string `json:"candidates,omitempty"`
}

// Impact estimates the financial magnitude of the discrepancy: the
// absolute difference priced per share when a price is known, otherwise
// the percent difference applied to the market value, otherwise zero.
func (d Discrepancy) Impact() float64 {
	if !d.Price.IsZero() {
		return d.Price.Mul(d.Difference.Abs()).InexactFloat64()
	}
	if !d.MarketValue.IsZero() {
		return float64(d.Percent) / 100 * d.MarketValue.Abs().InexactFloat64()
	}
	return 0
}

// Detector cross-checks snapshots, change sets and the transaction log.
// Detection never fails on malformed values beyond what normalization
// guarantees; everything suspicious becomes data, not an error.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.normalized()}
}

// severityForPercent grades a quantity percent difference.
// The grade is non-decreasing in the percent difference.
func severityForPercent(pct Percent) Severity {
	switch {
	case pct > 50:
		return SeverityCritical
	case pct > 20:
		return SeverityHigh
	case pct > 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// QuantityDiscrepancy compares a transaction-derived quantity against the
// snapshot-observed one. It returns nil when they agree within tolerance.
// An actual of zero with a non-zero calculated value is a defined 100%
// difference at CRITICAL severity, never a NaN.
func (d *Detector) QuantityDiscrepancy(calculated, actual Quantity, symbol string) *Discrepancy {
	if calculated.Within(actual, d.cfg.QuantityTolerance) {
		return nil
	}
	diff := calculated.Sub(actual)
	pct := PercentDifference(calculated, actual)

	severity := severityForPercent(pct)
	if actual.IsZero() {
		severity = SeverityCritical
	}
	return &Discrepancy{
		Type:       QuantityMismatch,
		Severity:   severity,
		Symbol:     symbol,
		Difference: diff,
		Percent:    pct,
		Description: fmt.Sprintf("%s: transactions imply %s shares but snapshot holds %s (off by %s, %s)",
			symbol, calculated, actual, diff, pct),
	}
}

// matchesChange reports whether a transaction explains a snapshot change:
// same symbol, matching category, quantity within tolerance.
func (d *Detector) matchesChange(tx Transaction, change PositionChange) bool {
	if tx.Symbol != change.Symbol {
		return false
	}
	qty := change.Delta.Abs()
	switch change.Kind {
	case ChangeAcquired, ChangeQuantityIncrease:
		return (tx.Type == TxBuy || tx.Type == TxAcquisition || tx.Type == TxTransfer) &&
			tx.Quantity.Abs().Within(qty, d.cfg.QuantityTolerance)
	case ChangeSold, ChangeQuantityDecrease:
		return (tx.Type == TxSell || tx.Type == TxMerger || tx.Type == TxTransfer) &&
			tx.Quantity.Abs().Within(qty, d.cfg.QuantityTolerance)
	default:
		return false
	}
}

// MissingTransactions checks every acquisition and disposition a change
// set observed against the transaction log, and reports the changes no
// transaction explains. Ambiguous ticker changes are surfaced for review
// as well, since recording a mapping would explain both legs.
func (d *Detector) MissingTransactions(txs []Transaction, cs *ChangeSet) []Discrepancy {
	var out []Discrepancy

	report := func(change PositionChange, typ DiscrepancyType, what string) {
		qty := change.Delta.Abs()
		out = append(out, Discrepancy{
			Type:       typ,
			Severity:   SeverityHigh,
			Account:    cs.Account,
			Symbol:     change.Symbol,
			Date:       cs.To,
			Difference: change.Delta,
			Price:      change.Price,
			Description: fmt.Sprintf("%s: %s of %s shares between %s and %s has no matching %s transaction",
				change.Symbol, what, qty, cs.From, cs.To, what),
		})
	}

	for _, change := range cs.Added {
		if !slices.ContainsFunc(txs, func(tx Transaction) bool { return d.matchesChange(tx, change) }) {
			report(change, MissingAcquisitions, "acquisition")
		}
	}
	for _, change := range cs.QuantityChanges {
		if change.Kind == ChangeQuantityIncrease {
			if !slices.ContainsFunc(txs, func(tx Transaction) bool { return d.matchesChange(tx, change) }) {
				report(change, MissingAcquisitions, "acquisition")
			}
		} else {
			if !slices.ContainsFunc(txs, func(tx Transaction) bool { return d.matchesChange(tx, change) }) {
				report(change, MissingSales, "disposition")
			}
		}
	}
	for _, change := range cs.Removed {
		if !slices.ContainsFunc(txs, func(tx Transaction) bool { return d.matchesChange(tx, change) }) {
			report(change, MissingSales, "disposition")
		}
	}

	for _, tc := range cs.TickerChanges {
		if !tc.Ambiguous {
			continue
		}
		symbol := tc.NewSymbol
		description := fmt.Sprintf("%s appeared with %s shares matching several sold positions (%v); record a symbol mapping to resolve",
			tc.NewSymbol, tc.Quantity, tc.Candidates)
		if symbol == "" {
			// Ambiguous in the other direction: one disappearance,
			// several equal-quantity appearances.
			symbol = tc.OldSymbol
			description = fmt.Sprintf("%s disappeared with %s shares matching several acquired positions (%v); record a symbol mapping to resolve",
				tc.OldSymbol, tc.Quantity, tc.Candidates)
		}
		out = append(out, Discrepancy{
			Type:        SymbolChangeNeeded,
			Severity:    SeverityMedium,
			Account:     cs.Account,
			Symbol:      symbol,
			Date:        cs.To,
			Difference:  tc.Quantity,
			Candidates:  tc.Candidates,
			Description: description,
		})
	}
	return out
}

// Inconsistencies runs the transaction-level and period-level arithmetic
// checks:
//
//   - every Buy/Sell must satisfy amount ≈ quantity × price;
//   - for every symbol and every consecutive snapshot pair, the sum of
//     transaction-implied quantity deltas must match the observed delta.
//
// The snapshots must belong to one account and be sorted by date.
func (d *Detector) Inconsistencies(txs []Transaction, snapshots []Snapshot) []Discrepancy {
	var out []Discrepancy

	for _, tx := range txs {
		if disc := d.checkArithmetic(tx); disc != nil {
			out = append(out, *disc)
		}
	}

	for i := 1; i < len(snapshots); i++ {
		out = append(out, d.checkPeriod(txs, snapshots[i-1], snapshots[i])...)
	}
	return out
}

// checkArithmetic verifies quantity × price ≈ amount for one transaction.
func (d *Detector) checkArithmetic(tx Transaction) *Discrepancy {
	if !tx.Type.ChecksArithmetic() {
		return nil
	}
	expected := tx.ExpectedAmount()
	actual := tx.Amount.Abs() // sell amounts are often exported negative
	if expected.Within(actual, d.cfg.CashTolerance) {
		return nil
	}
	diff := actual.Sub(expected).Abs()

	// HIGH when off by more than 1% of the expected amount. A zero
	// expected amount with a non-zero actual is always HIGH.
	severity := SeverityLow
	if expected.IsZero() || diff.GreaterThan(expected.Abs().Div(Q(100))) {
		severity = SeverityHigh
	}
	return &Discrepancy{
		Type:     MathematicalError,
		Severity: severity,
		Account:  tx.Account,
		Symbol:   tx.Symbol,
		Date:     tx.Date,
		Expected: expected,
		Actual:   tx.Amount,
		Price:    tx.Price,
		Description: fmt.Sprintf("%s %s on %s: %s × %s = %s but amount is %s",
			tx.Type, tx.Symbol, tx.Date, tx.Quantity, tx.Price, expected, tx.Amount),
	}
}

// checkPeriod reconciles per-symbol transaction deltas against the
// observed snapshot delta for one consecutive snapshot pair.
func (d *Detector) checkPeriod(txs []Transaction, older, newer Snapshot) []Discrepancy {
	oldPos := older.bySymbol()
	newPos := newer.bySymbol()

	symbols := make(map[string]struct{}, len(oldPos)+len(newPos))
	for sym := range oldPos {
		symbols[sym] = struct{}{}
	}
	for sym := range newPos {
		symbols[sym] = struct{}{}
	}
	ordered := make([]string, 0, len(symbols))
	for sym := range symbols {
		ordered = append(ordered, sym)
	}
	slices.Sort(ordered)

	var out []Discrepancy
	for _, sym := range ordered {
		observed := newPos[sym].Quantity.Sub(oldPos[sym].Quantity)

		var implied Quantity
		for _, tx := range txs {
			if tx.Symbol != sym {
				continue
			}
			// The window is (older, newer]: the older snapshot already
			// reflects everything on or before its own date.
			if !tx.Date.After(older.Date) || tx.Date.After(newer.Date) {
				continue
			}
			implied = implied.Add(tx.QuantityDelta())
		}

		remainder := observed.Sub(implied)
		if remainder.Within(Q(0), d.cfg.QuantityTolerance) {
			continue
		}

		// HIGH when the unexplained remainder exceeds 10% of the expected
		// change; a zero expected change is always HIGH.
		severity := SeverityMedium
		if observed.IsZero() || remainder.Abs().GreaterThan(observed.Abs().Div(Q(10))) {
			severity = SeverityHigh
		}
		out = append(out, Discrepancy{
			Type:        DateInconsistency,
			Severity:    severity,
			Account:     newer.Account,
			Symbol:      sym,
			Date:        newer.Date,
			Difference:  remainder,
			Percent:     PercentDifference(implied, observed),
			Price:       newPos[sym].Price,
			MarketValue: newPos[sym].MarketValue,
			Description: fmt.Sprintf("%s: snapshots %s→%s show a change of %s but transactions account for %s (unexplained %s)",
				sym, older.Date, newer.Date, observed, implied, remainder),
		})
	}
	return out
}

// Prioritize stable-sorts discrepancies by severity (CRITICAL first),
// tie-broken by descending estimated financial impact.
func (d *Detector) Prioritize(list []Discrepancy) {
	slices.SortStableFunc(list, func(a, b Discrepancy) int {
		if r := a.Severity.rank() - b.Severity.rank(); r != 0 {
			return r
		}
		ai, bi := a.Impact(), b.Impact()
		switch {
		case ai > bi:
			return -1
		case ai < bi:
			return 1
		default:
			return 0
		}
	})
}
