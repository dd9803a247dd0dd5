package folio

import (
	"strings"
	"testing"
)

func TestDetector_QuantityDiscrepancy(t *testing.T) {
	d := NewDetector(DefaultConfig())

	if got := d.QuantityDiscrepancy(Q(100), Q(100.0005), "AAPL"); got != nil {
		t.Errorf("within tolerance reported: %+v", got)
	}

	tests := []struct {
		name       string
		calculated float64
		actual     float64
		want       Severity
	}{
		{"small drift", 104, 100, SeverityLow},
		{"notable drift", 110, 100, SeverityMedium},
		{"large drift", 130, 100, SeverityHigh},
		{"huge drift", 160, 100, SeverityCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := d.QuantityDiscrepancy(Q(tc.calculated), Q(tc.actual), "AAPL")
			if got == nil {
				t.Fatal("no discrepancy reported")
			}
			if got.Severity != tc.want {
				t.Errorf("severity = %s, want %s", got.Severity, tc.want)
			}
			if got.Type != QuantityMismatch {
				t.Errorf("type = %s, want QUANTITY_MISMATCH", got.Type)
			}
		})
	}
}

// Severity never decreases as the percent difference grows.
func TestDetector_SeverityMonotonic(t *testing.T) {
	d := NewDetector(DefaultConfig())

	prev := SeverityLow
	for pct := 1; pct <= 100; pct++ {
		disc := d.QuantityDiscrepancy(Q(100+pct), Q(100), "AAPL")
		if disc == nil {
			t.Fatalf("at %d%%: no discrepancy", pct)
		}
		if disc.Severity.rank() > prev.rank() {
			t.Fatalf("severity dropped from %s to %s at %d%%", prev, disc.Severity, pct)
		}
		prev = disc.Severity
	}
}

func TestDetector_QuantityDiscrepancy_ZeroActual(t *testing.T) {
	d := NewDetector(DefaultConfig())

	got := d.QuantityDiscrepancy(Q(10), Q(0), "AAPL")
	if got == nil {
		t.Fatal("no discrepancy reported")
	}
	if !Percent(100).Equal(got.Percent) {
		t.Errorf("percent = %s, want 100%%", got.Percent)
	}
	if got.Severity != SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", got.Severity)
	}
}

func TestDetector_MissingTransactions(t *testing.T) {
	d := NewDetector(DefaultConfig())

	older := snap("ira", "2025-01-31", pos("AAPL", 100, 150))
	newer := snap("ira", "2025-02-28", pos("AAPL", 100, 155), pos("NVDA", 5, 900))
	cs, err := Compare(older, newer, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("unexplained acquisition", func(t *testing.T) {
		got := d.MissingTransactions(nil, cs)
		if len(got) != 1 {
			t.Fatalf("got %d discrepancies, want 1: %+v", len(got), got)
		}
		if got[0].Type != MissingAcquisitions || got[0].Symbol != "NVDA" {
			t.Errorf("discrepancy = %+v, want MISSING_ACQUISITIONS for NVDA", got[0])
		}
		if got[0].Severity != SeverityHigh {
			t.Errorf("severity = %s, want HIGH", got[0].Severity)
		}
	})

	t.Run("explained by a buy", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-02-10"), Type: TxBuy,
			Symbol: "NVDA", Quantity: Q(5), Price: NO(890), Amount: NO(4450),
		}}
		if got := d.MissingTransactions(txs, cs); len(got) != 0 {
			t.Errorf("explained change still reported: %+v", got)
		}
	})

	t.Run("quantity off by more than tolerance", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-02-10"), Type: TxBuy,
			Symbol: "NVDA", Quantity: Q(4), Price: NO(890), Amount: NO(3560),
		}}
		got := d.MissingTransactions(txs, cs)
		if len(got) != 1 {
			t.Errorf("mismatched quantity not reported: %+v", got)
		}
	})
}

func TestDetector_MissingTransactions_Disposition(t *testing.T) {
	d := NewDetector(DefaultConfig())

	older := snap("ira", "2025-01-31", pos("AAPL", 100, 150), pos("IBM", 40, 200))
	newer := snap("ira", "2025-02-28", pos("IBM", 25, 205))
	cs, err := Compare(older, newer, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	txs := []Transaction{{
		Account: "ira", Date: day("2025-02-05"), Type: TxSell,
		Symbol: "AAPL", Quantity: Q(100), Price: NO(152), Amount: NO(15200),
	}}
	got := d.MissingTransactions(txs, cs)
	if len(got) != 1 {
		t.Fatalf("got %d discrepancies, want 1 (the IBM decrease): %+v", len(got), got)
	}
	if got[0].Type != MissingSales || got[0].Symbol != "IBM" {
		t.Errorf("discrepancy = %+v, want MISSING_SALES for IBM", got[0])
	}
}

func TestDetector_MissingTransactions_AmbiguousTicker(t *testing.T) {
	d := NewDetector(DefaultConfig())

	older := snap("ira", "2025-01-31", pos("AAA", 100, 10), pos("BBB", 100, 20))
	newer := snap("ira", "2025-02-28", pos("CCC", 100, 15))
	cs, err := Compare(older, newer, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	got := d.MissingTransactions(nil, cs)
	var symbolChange *Discrepancy
	for i := range got {
		if got[i].Type == SymbolChangeNeeded {
			symbolChange = &got[i]
		}
	}
	if symbolChange == nil {
		t.Fatalf("no SYMBOL_CHANGE_NEEDED among %+v", got)
	}
	if symbolChange.Symbol != "CCC" || len(symbolChange.Candidates) != 2 {
		t.Errorf("discrepancy = %+v, want CCC with two candidates", symbolChange)
	}
}

func TestDetector_MissingTransactions_AmbiguousTickerReverse(t *testing.T) {
	d := NewDetector(DefaultConfig())

	older := snap("ira", "2025-01-31", pos("AAA", 100, 10))
	newer := snap("ira", "2025-02-28", pos("BBB", 100, 15), pos("CCC", 100, 20))
	cs, err := Compare(older, newer, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	got := d.MissingTransactions(nil, cs)
	var symbolChange *Discrepancy
	for i := range got {
		if got[i].Type == SymbolChangeNeeded {
			symbolChange = &got[i]
		}
	}
	if symbolChange == nil {
		t.Fatalf("no SYMBOL_CHANGE_NEEDED among %+v", got)
	}
	if symbolChange.Symbol != "AAA" || len(symbolChange.Candidates) != 2 {
		t.Errorf("discrepancy = %+v, want AAA with two candidates", symbolChange)
	}
	if !strings.Contains(symbolChange.Description, "disappeared") {
		t.Errorf("description = %q, want the disappearance wording", symbolChange.Description)
	}
}

func TestDetector_Inconsistencies_Arithmetic(t *testing.T) {
	d := NewDetector(DefaultConfig())

	t.Run("bad buy amount", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-01-10"), Type: TxBuy,
			Symbol: "AAPL", Quantity: Q(10), Price: NO(5), Amount: NO(60),
		}}
		got := d.Inconsistencies(txs, nil)
		if len(got) != 1 {
			t.Fatalf("got %d discrepancies, want 1: %+v", len(got), got)
		}
		disc := got[0]
		if disc.Type != MathematicalError {
			t.Errorf("type = %s, want MATHEMATICAL_ERROR", disc.Type)
		}
		if !disc.Expected.Equal(NO(50)) {
			t.Errorf("expected amount = %s, want 50", disc.Expected)
		}
		// Off by 10 on an expected 50: way past the 1% threshold.
		if disc.Severity != SeverityHigh {
			t.Errorf("severity = %s, want HIGH", disc.Severity)
		}
	})

	t.Run("rounding noise is low severity", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-01-10"), Type: TxBuy,
			Symbol: "AAPL", Quantity: Q(10), Price: NO(10), Amount: NO(100.50),
		}}
		got := d.Inconsistencies(txs, nil)
		if len(got) != 1 {
			t.Fatalf("got %d discrepancies, want 1: %+v", len(got), got)
		}
		if got[0].Severity != SeverityLow {
			t.Errorf("severity = %s, want LOW", got[0].Severity)
		}
	})

	t.Run("negative sell amount is fine", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-01-10"), Type: TxSell,
			Symbol: "AAPL", Quantity: Q(10), Price: NO(5), Amount: NO(-50),
		}}
		if got := d.Inconsistencies(txs, nil); len(got) != 0 {
			t.Errorf("sign-only difference reported: %+v", got)
		}
	})

	t.Run("cash categories are not checked", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-01-10"), Type: TxDividend,
			Symbol: "AAPL", Quantity: Q(0), Price: NO(0), Amount: NO(123.45),
		}}
		if got := d.Inconsistencies(txs, nil); len(got) != 0 {
			t.Errorf("dividend reported: %+v", got)
		}
	})
}

func TestDetector_Inconsistencies_Period(t *testing.T) {
	d := NewDetector(DefaultConfig())

	snapshots := []Snapshot{
		snap("ira", "2025-01-31", pos("AAPL", 100, 150)),
		snap("ira", "2025-02-28", pos("AAPL", 150, 155)),
	}

	t.Run("fully explained", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-02-10"), Type: TxBuy,
			Symbol: "AAPL", Quantity: Q(50), Price: NO(152), Amount: NO(7600),
		}}
		if got := d.Inconsistencies(txs, snapshots); len(got) != 0 {
			t.Errorf("explained period reported: %+v", got)
		}
	})

	t.Run("partially explained", func(t *testing.T) {
		txs := []Transaction{{
			Account: "ira", Date: day("2025-02-10"), Type: TxBuy,
			Symbol: "AAPL", Quantity: Q(30), Price: NO(152), Amount: NO(4560),
		}}
		got := d.Inconsistencies(txs, snapshots)
		if len(got) != 1 {
			t.Fatalf("got %d discrepancies, want 1: %+v", len(got), got)
		}
		disc := got[0]
		if disc.Type != DateInconsistency {
			t.Errorf("type = %s, want DATE_INCONSISTENCY", disc.Type)
		}
		if !disc.Difference.Equal(Q(20)) {
			t.Errorf("unexplained remainder = %s, want 20", disc.Difference)
		}
		// 20 unexplained out of a 50-share change exceeds 10%.
		if disc.Severity != SeverityHigh {
			t.Errorf("severity = %s, want HIGH", disc.Severity)
		}
	})

	t.Run("outside the window", func(t *testing.T) {
		// Dated on the older snapshot day: already reflected there.
		txs := []Transaction{{
			Account: "ira", Date: day("2025-01-31"), Type: TxBuy,
			Symbol: "AAPL", Quantity: Q(50), Price: NO(150), Amount: NO(7500),
		}}
		got := d.Inconsistencies(txs, snapshots)
		if len(got) != 1 {
			t.Errorf("out-of-window transaction counted: %+v", got)
		}
	})
}

func TestDetector_Prioritize(t *testing.T) {
	d := NewDetector(DefaultConfig())

	list := []Discrepancy{
		{Type: QuantityMismatch, Severity: SeverityLow, Symbol: "A"},
		{Type: QuantityMismatch, Severity: SeverityCritical, Symbol: "B"},
		{Type: QuantityMismatch, Severity: SeverityHigh, Symbol: "C", Difference: Q(1), Price: NO(10)},
		{Type: QuantityMismatch, Severity: SeverityHigh, Symbol: "D", Difference: Q(100), Price: NO(10)},
		{Type: QuantityMismatch, Severity: SeverityMedium, Symbol: "E"},
	}
	d.Prioritize(list)

	var order []string
	for _, disc := range list {
		order = append(order, disc.Symbol)
	}
	want := []string{"B", "D", "C", "E", "A"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestDetector_SuggestInterpolation(t *testing.T) {
	d := NewDetector(DefaultConfig())

	disc := Discrepancy{
		Type:       MissingAcquisitions,
		Severity:   SeverityHigh,
		Account:    "ira",
		Symbol:     "NVDA",
		Difference: Q(5),
	}

	got := d.SuggestInterpolation(disc, day("2025-01-31"), day("2025-02-28"), NO(900))
	if got == nil {
		t.Fatal("no suggestion")
	}
	tx := got.Transaction
	if tx.Type != TxBuy || tx.Symbol != "NVDA" || !tx.Quantity.Equal(Q(5)) {
		t.Errorf("suggested %s %s %s, want Buy 5 NVDA", tx.Type, tx.Quantity, tx.Symbol)
	}
	if !tx.Interpolated {
		t.Error("suggestion not marked interpolated")
	}
	if !tx.Date.Equal(day("2025-02-14")) {
		t.Errorf("date = %s, want window midpoint 2025-02-14", tx.Date)
	}
	if !tx.Amount.Equal(NO(4500)) {
		t.Errorf("amount = %s, want 4500", tx.Amount)
	}
	// Tight window and a known price.
	if got.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %s, want MEDIUM", got.Confidence)
	}
}

func TestDetector_SuggestInterpolation_Kinds(t *testing.T) {
	d := NewDetector(DefaultConfig())
	from, to := day("2025-01-31"), day("2025-02-28")

	tests := []struct {
		name string
		disc Discrepancy
		want TxType
	}{
		{"missing sale", Discrepancy{Type: MissingSales, Difference: Q(-10)}, TxSell},
		{"calculated exceeds actual", Discrepancy{Type: QuantityMismatch, Difference: Q(10)}, TxSell},
		{"actual exceeds calculated", Discrepancy{Type: QuantityMismatch, Difference: Q(-10)}, TxBuy},
		{"unexplained appearance", Discrepancy{Type: DateInconsistency, Difference: Q(10)}, TxBuy},
		{"unexplained disappearance", Discrepancy{Type: DateInconsistency, Difference: Q(-10)}, TxSell},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := d.SuggestInterpolation(tc.disc, from, to, NO(100))
			if got == nil {
				t.Fatal("no suggestion")
			}
			if got.Transaction.Type != tc.want {
				t.Errorf("type = %s, want %s", got.Transaction.Type, tc.want)
			}
			if got.Transaction.Quantity.IsNegative() {
				t.Errorf("quantity = %s, must be positive", got.Transaction.Quantity)
			}
		})
	}

	t.Run("not suggestible", func(t *testing.T) {
		if got := d.SuggestInterpolation(Discrepancy{Type: MathematicalError}, from, to, NO(1)); got != nil {
			t.Errorf("suggested for MATHEMATICAL_ERROR: %+v", got)
		}
	})
}

func TestDetector_SuggestInterpolation_Confidence(t *testing.T) {
	d := NewDetector(DefaultConfig())

	t.Run("wide window without price", func(t *testing.T) {
		disc := Discrepancy{Type: MissingAcquisitions, Difference: Q(5)}
		got := d.SuggestInterpolation(disc, day("2025-01-01"), day("2025-06-30"), NO(0))
		if got.Confidence != ConfidenceLow {
			t.Errorf("confidence = %s, want LOW", got.Confidence)
		}
	})

	t.Run("tight window, price, small gap", func(t *testing.T) {
		disc := Discrepancy{Type: MissingAcquisitions, Difference: Q(5), Percent: 3}
		got := d.SuggestInterpolation(disc, day("2025-02-01"), day("2025-02-28"), NO(100))
		if got.Confidence != ConfidenceHigh {
			t.Errorf("confidence = %s, want HIGH", got.Confidence)
		}
	})
}
