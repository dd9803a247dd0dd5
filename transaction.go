package folio

import (
	"fmt"
	"strings"
)

// TxType is the normalized transaction category.
type TxType string

// Normalized transaction categories. Raw source spellings are resolved to
// these by the Normalizer.
const (
	TxBuy         TxType = "Buy"
	TxSell        TxType = "Sell"
	TxDividend    TxType = "Dividend"
	TxInterest    TxType = "Interest"
	TxDeposit     TxType = "Deposit"
	TxWithdrawal  TxType = "Withdrawal"
	TxTransfer    TxType = "Transfer"
	TxFee         TxType = "Fee"
	TxAdjustment  TxType = "Adjustment"
	TxSplit       TxType = "Split"
	TxMerger      TxType = "Merger"
	TxAcquisition TxType = "Acquisition"
)

// IsSecurity reports whether the category refers to a specific security
// and therefore requires a symbol.
func (t TxType) IsSecurity() bool {
	switch t {
	case TxBuy, TxSell, TxDividend, TxSplit, TxMerger, TxAcquisition:
		return true
	default:
		return false
	}
}

// ChecksArithmetic reports whether amount ≈ quantity × price is expected
// to hold for the category.
func (t TxType) ChecksArithmetic() bool {
	return t == TxBuy || t == TxSell
}

// ParseTxType resolves a raw category spelling case-insensitively.
func ParseTxType(s string) (TxType, bool) {
	t, ok := txSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Transaction is one normalized row of an account's transaction log.
// Downstream components only ever see this shape, never raw source fields.
type Transaction struct {
	Account  string   `json:"account"`
	Date     Date     `json:"date"`
	Type     TxType   `json:"type"`
	Symbol   string   `json:"symbol,omitempty"`
	Quantity Quantity `json:"quantity"`
	Price    Money    `json:"price"`
	Amount   Money    `json:"amount"`
	Memo     string   `json:"memo,omitempty"`
	// Interpolated marks a synthetic transaction suggested by the
	// discrepancy detector. Never set on ingested records.
	Interpolated bool `json:"interpolated,omitempty"`
}

// When returns the date of the transaction.
func (t Transaction) When() Date { return t.Date }

// What returns the normalized category of the transaction.
func (t Transaction) What() TxType { return t.Type }

// QuantityDelta returns the signed share-count effect of the transaction
// on its symbol's position: positive for acquisitions, negative for
// dispositions, zero for cash-only categories.
func (t Transaction) QuantityDelta() Quantity {
	switch t.Type {
	case TxBuy, TxAcquisition:
		return t.Quantity
	case TxSell:
		return t.Quantity.Neg()
	case TxMerger, TxAdjustment, TxTransfer:
		// These carry a signed quantity as exported.
		return t.Quantity
	default:
		return Q(0)
	}
}

// ExpectedAmount returns quantity × price, the amount the record should
// carry for Buy/Sell categories.
func (t Transaction) ExpectedAmount() Money {
	return t.Price.Mul(t.Quantity)
}

func (t Transaction) String() string {
	if t.Symbol != "" {
		return fmt.Sprintf("%s %s %s %s", t.Date, t.Type, t.Quantity, t.Symbol)
	}
	return fmt.Sprintf("%s %s %s", t.Date, t.Type, t.Amount)
}

// Equal compares all identifying fields of two transactions.
func (t Transaction) Equal(o Transaction) bool {
	return t.Account == o.Account &&
		t.Date == o.Date &&
		t.Type == o.Type &&
		t.Symbol == o.Symbol &&
		t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) &&
		t.Amount.Equal(o.Amount)
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", t.Account)
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Optional("symbol", t.Symbol)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Append("amount", t.Amount)
	w.Optional("memo", t.Memo)
	w.Optional("interpolated", t.Interpolated)
	return w.MarshalJSON()
}
