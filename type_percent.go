package folio

import "fmt"

// Percent is a percentage value (5.0 means 5%).
type Percent float64

// PercentDifference returns the percent difference of calculated from actual.
// A zero actual with a non-zero calculated is a defined 100% difference,
// never a NaN.
func PercentDifference(calculated, actual Quantity) Percent {
	if actual.IsZero() {
		if calculated.IsZero() {
			return 0
		}
		return 100
	}
	diff := calculated.Sub(actual).Abs()
	return Percent(diff.Div(actual.Abs()).InexactFloat64() * 100)
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
