package renderer

import "github.com/hmehl/folio"

// Comparison is the view model of a snapshot diff report.
type Comparison struct {
	Account string
	From    string
	To      string

	Changes       []ChangeRow
	Unchanged     int
	TickerChanges []TickerChangeRow
}

// ChangeRow is one pre-formatted change line.
type ChangeRow struct {
	Symbol string
	Kind   string
	Old    string
	New    string
	Delta  string
}

// TickerChangeRow is one inferred or ambiguous symbol change line.
type TickerChangeRow struct {
	From       string
	To         string
	Quantity   string
	Ambiguous  bool
	Candidates string
}

// NewComparison builds the view from a change set.
func NewComparison(cs *folio.ChangeSet) *Comparison {
	c := &Comparison{
		Account:   cs.Account,
		From:      cs.From.String(),
		To:        cs.To.String(),
		Unchanged: len(cs.Unchanged),
	}
	for _, pc := range cs.Changes() {
		c.Changes = append(c.Changes, ChangeRow{
			Symbol: pc.Symbol,
			Kind:   string(pc.Kind),
			Old:    pc.OldQuantity.String(),
			New:    pc.NewQuantity.String(),
			Delta:  pc.Delta.String(),
		})
	}
	for _, tc := range cs.TickerChanges {
		row := TickerChangeRow{
			From:      tc.OldSymbol,
			To:        tc.NewSymbol,
			Quantity:  tc.Quantity.String(),
			Ambiguous: tc.Ambiguous,
		}
		if tc.Ambiguous {
			// The candidates sit on whichever side was not pinned down.
			if row.From == "" {
				row.From = "?"
			}
			if row.To == "" {
				row.To = "?"
			}
			row.Candidates = join(tc.Candidates)
		}
		c.TickerChanges = append(c.TickerChanges, row)
	}
	return c
}

// RenderComparison renders a change set to a markdown string.
func RenderComparison(cs *folio.ChangeSet) string {
	partials := map[string]string{
		"comparison_title":   "comparison_title.md",
		"comparison_changes": "comparison_changes.md",
		"comparison_tickers": "comparison_tickers.md",
	}
	return renderTemplate("comparison", "comparison.md", partials, NewComparison(cs))
}
