package cmd

import (
	"strings"
	"testing"

	"github.com/hmehl/folio"
)

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		num     int64
		den     int64
		wantErr bool
	}{
		{in: "2:1", num: 2, den: 1},
		{in: "1:10", num: 1, den: 10},
		{in: " 3 : 2 ", num: 3, den: 2},
		{in: "2", wantErr: true},
		{in: "2:1:4", wantErr: true},
		{in: "a:b", wantErr: true},
	}
	for _, tc := range tests {
		num, den, err := parseRatio(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseRatio(%q): expected an error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRatio(%q): %v", tc.in, err)
			continue
		}
		if num != tc.num || den != tc.den {
			t.Errorf("parseRatio(%q) = %d:%d, want %d:%d", tc.in, num, den, tc.num, tc.den)
		}
	}
}

func TestRenderTransactions(t *testing.T) {
	out := renderTransactions(nil)
	if !strings.Contains(out, "No transactions.") {
		t.Errorf("empty list rendered as %q", out)
	}

	out = renderTransactions([]folio.Transaction{
		{
			Account:  "ira",
			Date:     folio.MustParseDate("2025-03-15"),
			Type:     folio.TxBuy,
			Symbol:   "AAPL",
			Quantity: folio.Q(10),
			Price:    folio.M(150, "USD"),
			Amount:   folio.M(1500, "USD"),
		},
		{
			Account:      "ira",
			Date:         folio.MustParseDate("2025-04-01"),
			Type:         folio.TxSell,
			Symbol:       "AAPL",
			Quantity:     folio.Q(5),
			Price:        folio.M(160, "USD"),
			Amount:       folio.M(800, "USD"),
			Interpolated: true,
		},
	})
	if !strings.Contains(out, "| 2025-03-15 | ira | Buy | AAPL |") {
		t.Errorf("missing buy row in:\n%s", out)
	}
	if !strings.Contains(out, "(interpolated)") {
		t.Errorf("interpolated marker missing in:\n%s", out)
	}
}

func TestRenderSale(t *testing.T) {
	result := folio.SaleResult{
		Allocations: []folio.SaleAllocation{{
			LotID:     "ira/AAPL#1",
			Date:      folio.MustParseDate("2025-04-01"),
			Quantity:  folio.Q(10),
			CostBasis: folio.M(1000, "USD"),
			Proceeds:  folio.M(1500, "USD"),
			Gain:      folio.M(500, "USD"),
		}},
		CostBasis: folio.M(1000, "USD"),
		Proceeds:  folio.M(1500, "USD"),
		Gain:      folio.M(500, "USD"),
		Unfilled:  folio.Q(5),
	}
	out := renderSale("AAPL", result)
	if !strings.Contains(out, "| ira/AAPL#1 | 2025-04-01 | 10 |") {
		t.Errorf("missing allocation row in:\n%s", out)
	}
	if !strings.Contains(out, "exceed the open lots") {
		t.Errorf("unfilled warning missing in:\n%s", out)
	}
}

// Filtering by symbol follows the recorded mappings, so transactions
// recorded under an old identity answer a query for the current one.
func TestTxFilter_MappingsApplied(t *testing.T) {
	store := folio.NewStore(folio.DefaultConfig())
	store.AddMapping(folio.SymbolMapping{
		OldSymbol: "FB",
		NewSymbol: "META",
		Effective: folio.MustParseDate("2022-06-09"),
		Action:    folio.ActionRename,
	})
	store.AddTransactions(
		folio.Transaction{
			Account: "ira", Date: folio.MustParseDate("2022-01-10"),
			Type: folio.TxBuy, Symbol: "FB",
			Quantity: folio.Q(10), Price: folio.M(300, "USD"), Amount: folio.M(3000, "USD"),
		},
		folio.Transaction{
			Account: "ira", Date: folio.MustParseDate("2023-01-10"),
			Type: folio.TxBuy, Symbol: "META",
			Quantity: folio.Q(5), Price: folio.M(120, "USD"), Amount: folio.M(600, "USD"),
		},
		folio.Transaction{
			Account: "ira", Date: folio.MustParseDate("2023-01-10"),
			Type: folio.TxBuy, Symbol: "AAPL",
			Quantity: folio.Q(1), Price: folio.M(150, "USD"), Amount: folio.M(150, "USD"),
		},
	)

	for _, query := range []string{"META", "fb"} {
		c := txCmd{account: "ira", symbol: query}
		got, err := c.filter(store)
		if err != nil {
			t.Fatalf("filter(%s): %v", query, err)
		}
		if len(got) != 2 {
			t.Fatalf("filter(%s) returned %d transactions, want 2 (FB leg via mapping)", query, len(got))
		}
		if got[0].Symbol != "FB" || got[1].Symbol != "META" {
			t.Errorf("filter(%s) = %s, %s; want the FB and META legs", query, got[0].Symbol, got[1].Symbol)
		}
	}

	c := txCmd{account: "ira", symbol: "AAPL"}
	got, err := c.filter(store)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Errorf("unmapped symbol filter returned %v", got)
	}
}

func TestParseAction(t *testing.T) {
	if a, err := parseAction("Rename"); err != nil || a != folio.ActionRename {
		t.Errorf("parseAction(Rename) = %v, %v", a, err)
	}
	if _, err := parseAction("liquidation"); err == nil {
		t.Error("unknown action accepted")
	}
}
