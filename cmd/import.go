package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
	"github.com/hmehl/folio/ingest"
)

type importCmd struct {
	account string
	date    string
	kind    string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a broker positions or activity export" }
func (*importCmd) Usage() string {
	return `flo import -account <name> [-d <date>] [-kind positions|activity] <file>...

  Imports broker exports into the store. Positions exports become dated
  account snapshots; activity exports become normalized transactions and
  feed the lot book (buys open lots, sells consume them).

Usage Examples:
# Record today's holdings of the ira account.
$ flo import -account ira -kind positions holdings.csv

# Record the year's activity.
$ flo import -account ira -kind activity activity.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account the export belongs to.")
	f.StringVar(&c.date, "d", "", "Snapshot date for positions exports. Defaults to today.")
	f.StringVar(&c.kind, "kind", "positions", "Export kind: positions or activity.")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one export file is required.")
		return subcommands.ExitUsageError
	}

	on := folio.Today()
	if c.date != "" {
		var err error
		on, err = folio.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, file := range f.Args() {
		switch c.kind {
		case "positions":
			snap, err := ingest.Snapshot(file, c.account, on)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", file, err)
				return subcommands.ExitFailure
			}
			if err := store.AddSnapshot(snap); err != nil {
				fmt.Fprintf(os.Stderr, "Error recording snapshot from %q: %v\n", file, err)
				return subcommands.ExitFailure
			}
			fmt.Printf("Recorded snapshot of %q on %s (%d positions) from %s\n",
				c.account, on, len(snap.Positions), file)

		case "activity":
			txs, err := ingest.Transactions(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", file, err)
				return subcommands.ExitFailure
			}
			for i := range txs {
				txs[i].Account = c.account
			}
			store.AddTransactions(txs...)
			if err := feedLotBook(store, txs); err != nil {
				fmt.Fprintf(os.Stderr, "Error updating lots from %q: %v\n", file, err)
				return subcommands.ExitFailure
			}
			fmt.Printf("Recorded %d transactions of %q from %s\n", len(txs), c.account, file)

		default:
			fmt.Fprintf(os.Stderr, "Error: unknown export kind %q.\n", c.kind)
			return subcommands.ExitUsageError
		}
	}

	if err := EncodeStore(store); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// feedLotBook replays imported security transactions into the lot book:
// buys and acquisitions open lots, sells consume them with the default
// method. Unfilled sales are reported but never block the import; the
// gap resurfaces as a discrepancy at reconcile time.
func feedLotBook(store *folio.Store, txs []folio.Transaction) error {
	book := store.LotBook()
	for _, tx := range txs {
		id := folio.NewSecurityID(tx.Account, tx.Symbol)
		switch tx.Type {
		case folio.TxBuy, folio.TxAcquisition:
			basis := tx.Amount
			if basis.IsZero() {
				basis = tx.ExpectedAmount()
			}
			// Amounts are exported signed; a lot's basis is the magnitude.
			if _, err := book.CreateLot(tx.Account, tx.Symbol, tx.Quantity, tx.Date, basis.Abs()); err != nil {
				return err
			}
		case folio.TxSell:
			result, err := book.ConsumeSale(id, folio.Sale{
				Date:     tx.Date,
				Quantity: tx.Quantity,
				Price:    tx.Price,
				Memo:     tx.Memo,
			}, store.Config().LotMethod)
			if err != nil {
				return err
			}
			if !result.Unfilled.IsZero() {
				fmt.Printf("Warning: sale of %s %s on %s exceeds open lots by %s\n",
					tx.Quantity, tx.Symbol, tx.Date, result.Unfilled)
			}
		}
	}
	return nil
}
