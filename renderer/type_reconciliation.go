package renderer

import (
	"strings"

	"github.com/hmehl/folio"
)

// Reconciliation is the view model of a discrepancy report.
type Reconciliation struct {
	Account     string
	Date        string
	Findings    []FindingRow
	Suggestions []SuggestionRow
}

// FindingRow is one pre-formatted discrepancy line.
type FindingRow struct {
	Severity    string
	Type        string
	Symbol      string
	Description string
}

// SuggestionRow is one proposed interpolated transaction.
type SuggestionRow struct {
	Transaction string
	Confidence  string
	Rationale   string
}

// NewReconciliation builds the view from prioritized discrepancies and
// their interpolation proposals.
func NewReconciliation(account string, on folio.Date, discrepancies []folio.Discrepancy, suggestions []folio.Interpolation) *Reconciliation {
	r := &Reconciliation{Account: account, Date: on.String()}
	for _, d := range discrepancies {
		r.Findings = append(r.Findings, FindingRow{
			Severity:    string(d.Severity),
			Type:        string(d.Type),
			Symbol:      d.Symbol,
			Description: d.Description,
		})
	}
	for _, s := range suggestions {
		r.Suggestions = append(r.Suggestions, SuggestionRow{
			Transaction: s.Transaction.String(),
			Confidence:  string(s.Confidence),
			Rationale:   s.Rationale,
		})
	}
	return r
}

// RenderReconciliation renders a discrepancy report to a markdown string.
func RenderReconciliation(r *Reconciliation) string {
	partials := map[string]string{
		"reconciliation_title":       "reconciliation_title.md",
		"reconciliation_findings":    "reconciliation_findings.md",
		"reconciliation_suggestions": "reconciliation_suggestions.md",
	}
	return renderTemplate("reconciliation", "reconciliation.md", partials, r)
}

// join renders a candidate list for a table cell.
func join(items []string) string {
	return strings.Join(items, ", ")
}
