package folio

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a given currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// USD is a shorthand for M(value, "USD"), the default snapshot currency.
func USD[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Money {
	return M(value, "USD")
}

// currency returns the money's currency, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String formats the value with its currency symbol and fraction digits.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string             { return m.cur }
func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                   { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money         { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money         { return Money{value: m.value.Div(q.value), cur: m.cur} }
func (m Money) DivPrice(n Money) Quantity    { return Quantity{value: m.value.Div(n.value)} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Within reports whether m and n differ by no more than the tolerance,
// regardless of sign. The currency check is weak: a zero-value Money has
// no currency of its own.
func (m Money) Within(n Money, tolerance float64) bool {
	return !m.value.Sub(n.value).Abs().GreaterThan(decimal.NewFromFloat(tolerance))
}

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// InexactFloat64 returns the nearest float64, for impact estimates and display only.
func (m Money) InexactFloat64() float64 { return m.value.InexactFloat64() }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}

// UnmarshalJSON accepts either a bare number (currency left weak) or the
// {"currency","amount"} object form written by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(data); err == nil {
		m.value, m.cur = amount, ""
		return nil
	}
	var obj struct {
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.value, m.cur = obj.Amount, obj.Currency
	return nil
}
