package folio

import "fmt"

// Confidence grades how much an interpolated transaction can be trusted.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Interpolation is a proposed transaction reconstructing an undocumented
// snapshot change. The transaction carries Interpolated=true and is only
// ever a suggestion; nothing records it without an operator's say-so.
type Interpolation struct {
	Transaction Transaction `json:"transaction"`
	Confidence  Confidence  `json:"confidence"`
	Rationale   string      `json:"rationale"`
}

// SuggestInterpolation proposes a transaction explaining a missing
// acquisition or disposition discrepancy observed between the two dated
// snapshots. The proposed date is the midpoint of the window, the best
// available guess absent any record. It returns nil for discrepancy
// types that a single transaction cannot explain.
func (d *Detector) SuggestInterpolation(disc Discrepancy, from, to Date, price Money) *Interpolation {
	var typ TxType
	switch disc.Type {
	case MissingAcquisitions:
		typ = TxBuy
	case MissingSales:
		typ = TxSell
	case QuantityMismatch:
		// Difference is calculated − actual: transactions implying more
		// than the snapshot holds means a sale went unrecorded.
		if disc.Difference.IsZero() {
			return nil
		}
		typ = TxSell
		if disc.Difference.IsNegative() {
			typ = TxBuy
		}
	case DateInconsistency:
		// Difference is observed − implied: a positive remainder means
		// shares appeared that no transaction explains.
		if disc.Difference.IsZero() {
			return nil
		}
		typ = TxBuy
		if disc.Difference.IsNegative() {
			typ = TxSell
		}
	default:
		return nil
	}

	qty := disc.Difference.Abs()
	when := Midpoint(from, to)

	tx := Transaction{
		Account:      disc.Account,
		Date:         when,
		Type:         typ,
		Symbol:       disc.Symbol,
		Quantity:     qty,
		Price:        price,
		Amount:       price.Mul(qty),
		Memo:         fmt.Sprintf("interpolated %s between %s and %s", typ, from, to),
		Interpolated: true,
	}

	return &Interpolation{
		Transaction: tx,
		Confidence:  d.confidence(disc, from, to, price),
		Rationale: fmt.Sprintf("%s shares of %s unaccounted for between %s and %s; proposing a %s on the window midpoint",
			qty, disc.Symbol, from, to, typ),
	}
}

// confidence scores a proposal on window tightness, price availability
// and the relative size of the gap.
func (d *Detector) confidence(disc Discrepancy, from, to Date, price Money) Confidence {
	score := 0
	if DaysBetween(from, to) <= 45 {
		score++
	}
	if !price.IsZero() {
		score++
	}
	if disc.Percent != 0 && disc.Percent <= 5 {
		score++
	}
	switch {
	case score >= 3:
		return ConfidenceHigh
	case score == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
