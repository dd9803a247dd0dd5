package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
	"github.com/hmehl/folio/renderer"
)

type reconcileCmd struct {
	account string
	suggest bool
	apply   bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "cross-check snapshots, transactions and lots" }
func (*reconcileCmd) Usage() string {
	return `flo reconcile [-account <name>] [-suggest] [-apply]

  Cross-checks the three views of each account that should agree: the
  dated snapshots, the transaction log and the lot book. Findings are
  prioritized by severity and estimated financial impact. With -suggest,
  interpolated transactions reconstructing undocumented changes are
  proposed; with -apply they are also recorded, marked as interpolated.

Usage Examples:
# Reconcile every account.
$ flo reconcile

# Reconcile one account and propose repairs.
$ flo reconcile -account ira -suggest
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to reconcile. All accounts by default.")
	f.BoolVar(&c.suggest, "suggest", false, "Propose interpolated transactions for unexplained changes.")
	f.BoolVar(&c.apply, "apply", false, "Record the proposed transactions. Implies -suggest.")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	accounts := store.Accounts()
	if c.account != "" {
		accounts = []string{c.account}
	}
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: the store is empty, nothing to reconcile.")
		return subcommands.ExitSuccess
	}

	applied := 0
	for _, account := range accounts {
		findings, suggestions := reconcileAccount(store, account, c.suggest || c.apply)

		var on folio.Date
		if latest, ok := store.LatestSnapshot(account); ok {
			on = latest.Date
		}
		printMarkdown(renderer.RenderReconciliation(
			renderer.NewReconciliation(account, on, findings, suggestions)))

		if c.apply {
			for _, s := range suggestions {
				store.AddTransactions(s.Transaction)
				applied++
			}
		}
	}

	if applied > 0 {
		if err := EncodeStore(store); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Recorded %d interpolated transactions\n", applied)
	}
	return subcommands.ExitSuccess
}

// reconcileAccount runs every detector over one account and returns the
// prioritized findings, plus interpolation proposals when asked for.
func reconcileAccount(store *folio.Store, account string, suggest bool) ([]folio.Discrepancy, []folio.Interpolation) {
	detector := folio.NewDetector(store.Config())
	snapshots := store.Snapshots(account)
	txs := store.TransactionsByAccount(account)

	var findings []folio.Discrepancy
	findings = append(findings, detector.Inconsistencies(txs, snapshots)...)

	// The most recent snapshot window carries the freshest gaps.
	var older, newer folio.Snapshot
	if len(snapshots) >= 2 {
		older, newer = snapshots[len(snapshots)-2], snapshots[len(snapshots)-1]
		if cs, err := folio.Compare(older, newer, store.Config()); err == nil {
			window := store.TransactionsBetween(account, older.Date, newer.Date)
			findings = append(findings, detector.MissingTransactions(window, cs)...)
		}
	}

	findings = append(findings, lotDrift(store, detector, account, snapshots)...)
	detector.Prioritize(findings)

	var suggestions []folio.Interpolation
	if suggest && len(snapshots) >= 2 {
		for _, disc := range findings {
			price := disc.Price
			if pos, ok := newer.Position(disc.Symbol); ok && price.IsZero() {
				price = pos.Price
			}
			if s := detector.SuggestInterpolation(disc, older.Date, newer.Date, price); s != nil {
				s.Transaction.Account = account
				suggestions = append(suggestions, *s)
			}
		}
	}
	return findings, suggestions
}

// lotDrift compares the lot book's remaining shares against the latest
// snapshot for every symbol either side knows about.
func lotDrift(store *folio.Store, detector *folio.Detector, account string, snapshots []folio.Snapshot) []folio.Discrepancy {
	if len(snapshots) == 0 {
		return nil
	}
	latest := snapshots[len(snapshots)-1]
	book := store.LotBook()

	symbols := make(map[string]bool)
	for _, s := range latest.Symbols() {
		symbols[s] = true
	}
	for _, l := range book.AllLots() {
		if l.Account == account {
			symbols[l.Symbol] = true
		}
	}

	var out []folio.Discrepancy
	for _, symbol := range slices.Sorted(maps.Keys(symbols)) {
		calculated := book.TotalRemaining(folio.NewSecurityID(account, symbol))
		if calculated.IsZero() && len(book.Lots(folio.NewSecurityID(account, symbol))) == 0 {
			// No lot history for the symbol, nothing to compare against.
			continue
		}
		var actual folio.Quantity
		var price, value folio.Money
		if pos, ok := latest.Position(symbol); ok {
			actual = pos.Quantity
			price, value = pos.Price, pos.MarketValue
		}
		if disc := detector.QuantityDiscrepancy(calculated, actual, symbol); disc != nil {
			disc.Account = account
			disc.Date = latest.Date
			disc.Price = price
			disc.MarketValue = value
			out = append(out, *disc)
		}
	}
	return out
}
