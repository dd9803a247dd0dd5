package renderer

import "github.com/hmehl/folio"

// LotReport is the view model of a lot inventory report.
type LotReport struct {
	Account   string
	Rows      []LotRow
	Remaining string
	CostBasis string
}

// LotRow is one pre-formatted lot line.
type LotRow struct {
	ID        string
	Symbol    string
	Acquired  string
	Quantity  string
	Remaining string
	Price     string
	CostBasis string
	Status    string
}

// NewLotReport builds the view from a lot book's lots for one account.
func NewLotReport(account string, lots []*folio.Lot) *LotReport {
	r := &LotReport{Account: account}
	var remaining folio.Quantity
	var basis folio.Money
	for _, l := range lots {
		r.Rows = append(r.Rows, LotRow{
			ID:        l.ID,
			Symbol:    l.Symbol,
			Acquired:  l.Acquired.String(),
			Quantity:  l.Quantity.String(),
			Remaining: l.Remaining.String(),
			Price:     l.Price.String(),
			CostBasis: l.CostBasis.String(),
			Status:    string(l.Status),
		})
		remaining = remaining.Add(l.Remaining)
		if !l.Quantity.IsZero() {
			basis = basis.Add(l.CostBasis.Div(l.Quantity).Mul(l.Remaining))
		}
	}
	r.Remaining = remaining.String()
	r.CostBasis = basis.String()
	return r
}

// RenderLots renders a lot inventory to a markdown string.
func RenderLots(account string, lots []*folio.Lot) string {
	partials := map[string]string{
		"lots_title": "lots_title.md",
		"lots_table": "lots_table.md",
	}
	return renderTemplate("lots", "lots.md", partials, NewLotReport(account, lots))
}
