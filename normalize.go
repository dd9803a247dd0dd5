package folio

import (
	"log"
	"strconv"
	"strings"
)

// This file converts raw uploaded records into canonical Position and
// Transaction values. Brokerage exports disagree on everything: casing,
// field names, numeric formats, date shapes. The normalizer resolves all
// of that once; downstream components never see source field names.

// field synonym tables, all keys lower-case.
var (
	positionFields = map[string][]string{
		"symbol":      {"symbol", "ticker", "security", "stock"},
		"description": {"description", "name", "security name", "security description"},
		"quantity":    {"quantity", "qty", "qty (quantity)", "shares", "share quantity", "units"},
		"price":       {"price", "last price", "share price", "unit price", "market price"},
		"marketValue": {"market value", "marketvalue", "value", "current value", "mkt value"},
		"costBasis":   {"cost basis", "costbasis", "cost", "total cost", "cost basis total"},
		"gain":        {"gain/loss", "gain", "gain $", "gain/loss $", "unrealized gain/loss", "total gain/loss dollar"},
		"gainPercent": {"gain/loss %", "gain %", "unrealized gain/loss %", "total gain/loss percent"},
	}
	transactionFields = map[string][]string{
		"symbol":   {"symbol", "ticker", "security", "stock"},
		"date":     {"date", "trade date", "transaction date", "settlement date", "run date"},
		"type":     {"type", "action", "transaction type", "activity", "description"},
		"quantity": {"quantity", "qty", "shares", "units"},
		"price":    {"price", "share price", "unit price", "price ($)"},
		"amount":   {"amount", "total", "net amount", "amount ($)", "value"},
		"account":  {"account", "account number", "account name"},
		"memo":     {"memo", "notes", "comment"},
	}
)

// txSynonyms resolves raw transaction type spellings, all keys lower-case.
var txSynonyms = map[string]TxType{
	"buy": TxBuy, "bought": TxBuy, "purchase": TxBuy, "purchased": TxBuy,
	"reinvest": TxBuy, "reinvestment": TxBuy, "you bought": TxBuy,
	"sell": TxSell, "sold": TxSell, "sale": TxSell, "you sold": TxSell,
	"dividend": TxDividend, "div": TxDividend, "qualified dividend": TxDividend,
	"ordinary dividend": TxDividend, "cash dividend": TxDividend,
	"interest": TxInterest, "int": TxInterest, "interest income": TxInterest,
	"deposit": TxDeposit, "contribution": TxDeposit, "electronic funds transfer received": TxDeposit,
	"withdrawal": TxWithdrawal, "withdraw": TxWithdrawal, "distribution": TxWithdrawal,
	"transfer": TxTransfer, "journal": TxTransfer, "transfer of assets": TxTransfer,
	"fee": TxFee, "commission": TxFee, "service fee": TxFee, "adr fee": TxFee,
	"adjustment": TxAdjustment, "adjust": TxAdjustment, "correction": TxAdjustment,
	"split": TxSplit, "stock split": TxSplit, "reverse split": TxSplit,
	"merger": TxMerger, "merger/exchange": TxMerger, "exchange": TxMerger,
	"acquisition": TxAcquisition, "acquired": TxAcquisition, "spinoff": TxAcquisition,
}

// NormalizeSymbol trims and upper-cases a raw symbol.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// lowerKeyed re-indexes a raw record by lower-cased trimmed keys.
func lowerKeyed(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// lookup returns the first value present under any synonym of the
// canonical field.
func lookup(rec map[string]any, synonyms map[string][]string, field string) (any, bool) {
	for _, key := range synonyms[field] {
		if v, ok := rec[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// coerceString renders a raw value as a trimmed string.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	default:
		return strings.TrimSpace(strconvFormat(v))
	}
}

func strconvFormat(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}

// coerceFloat parses a raw value as a float64 with a 0 fallback for
// unparseable values. Currency symbols, thousands separators and a
// trailing percent sign are stripped; parenthesized values are negative.
func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		neg := false
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			neg = true
			s = s[1 : len(s)-1]
		}
		for _, cut := range []string{"$", "€", "£", ",", "%", " "} {
			s = strings.ReplaceAll(s, cut, "")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		if neg {
			return -f
		}
		return f
	default:
		return 0
	}
}

// coerceDate parses a raw value as a Date, accepting epoch numbers and
// the usual string shapes. The zero Date signals failure.
func coerceDate(v any) Date {
	switch d := v.(type) {
	case float64:
		return DateOfEpoch(int64(d))
	case int64:
		return DateOfEpoch(d)
	case int:
		return DateOfEpoch(int64(d))
	case string:
		on, err := ParseDate(d)
		if err != nil {
			return Date{}
		}
		return on
	default:
		return Date{}
	}
}

// NormalizePosition converts one raw position record into the canonical
// shape. It reports false for rows without a symbol or with a negative
// quantity; zero-quantity rows are kept (they are legitimate in some
// exports and filtered by the lot engine's callers).
func NormalizePosition(raw map[string]any) (Position, bool) {
	rec := lowerKeyed(raw)

	get := func(field string) (any, bool) { return lookup(rec, positionFields, field) }

	var p Position
	if v, ok := get("symbol"); ok {
		p.Symbol = NormalizeSymbol(coerceString(v))
	}
	if p.Symbol == "" {
		return Position{}, false
	}
	if v, ok := get("description"); ok {
		p.Description = coerceString(v)
	}
	var qty float64
	if v, ok := get("quantity"); ok {
		qty = coerceFloat(v)
	}
	if qty < 0 {
		return Position{}, false
	}
	p.Quantity = Q(qty)
	if v, ok := get("price"); ok {
		p.Price = M(coerceFloat(v), "")
	}
	if v, ok := get("marketValue"); ok {
		p.MarketValue = M(coerceFloat(v), "")
	}
	if v, ok := get("costBasis"); ok {
		p.CostBasis = M(coerceFloat(v), "")
	}
	if v, ok := get("gain"); ok {
		p.Gain = M(coerceFloat(v), "")
	}
	if v, ok := get("gainPercent"); ok {
		p.GainPercent = Percent(coerceFloat(v))
	}
	return p, true
}

// NormalizeTransaction converts one raw transaction record into the
// canonical shape. A record missing a date, a resolvable type, or (for
// security categories) a symbol is rejected: the caller drops it from
// the batch. Rejection is logged, never raised as an error; ingestion
// is best-effort.
func NormalizeTransaction(raw map[string]any) (Transaction, bool) {
	rec := lowerKeyed(raw)

	get := func(field string) (any, bool) { return lookup(rec, transactionFields, field) }

	var t Transaction
	if v, ok := get("date"); ok {
		t.Date = coerceDate(v)
	}
	if t.Date.IsZero() {
		log.Printf("normalize: dropping transaction without a usable date: %v", raw)
		return Transaction{}, false
	}

	if v, ok := get("type"); ok {
		if typ, resolved := ParseTxType(coerceString(v)); resolved {
			t.Type = typ
		}
	}
	if t.Type == "" {
		log.Printf("normalize: dropping transaction without a recognized type: %v", raw)
		return Transaction{}, false
	}

	if v, ok := get("symbol"); ok {
		t.Symbol = NormalizeSymbol(coerceString(v))
	}
	if t.Symbol == "" && t.Type.IsSecurity() {
		log.Printf("normalize: dropping %s transaction without a symbol: %v", t.Type, raw)
		return Transaction{}, false
	}

	if v, ok := get("account"); ok {
		t.Account = coerceString(v)
	}
	if v, ok := get("quantity"); ok {
		t.Quantity = Q(coerceFloat(v))
	}
	if v, ok := get("price"); ok {
		t.Price = M(coerceFloat(v), "")
	}
	if v, ok := get("amount"); ok {
		t.Amount = M(coerceFloat(v), "")
	}
	if v, ok := get("memo"); ok {
		t.Memo = coerceString(v)
	}
	return t, true
}

// NormalizePositions filters a whole upload best-effort, keeping the
// source order of the surviving rows.
func NormalizePositions(raw []map[string]any) []Position {
	out := make([]Position, 0, len(raw))
	for _, rec := range raw {
		if p, ok := NormalizePosition(rec); ok {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeTransactions filters a whole upload best-effort, keeping the
// source order of the surviving rows.
func NormalizeTransactions(raw []map[string]any) []Transaction {
	out := make([]Transaction, 0, len(raw))
	for _, rec := range raw {
		if t, ok := NormalizeTransaction(rec); ok {
			out = append(out, t)
		}
	}
	return out
}
